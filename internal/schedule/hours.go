// Package schedule validates scheduled-event timestamps against configured
// working-hour windows. A Window is a plain value carried in the store's
// policy; there is no process-wide settings state.
package schedule

import (
	"fmt"
	"time"
)

// Window is a daily working-hour window with slot granularity. The zero
// value disables validation.
type Window struct {
	Start       string // "15:04" wall-clock, inclusive
	End         string // "15:04" wall-clock, inclusive
	SlotMinutes int    // slot boundary; 0 disables the slot check
}

// Enabled reports whether the window performs any validation.
func (w Window) Enabled() bool {
	return w.Start != "" && w.End != ""
}

// Validate checks that t falls inside the window and on a slot boundary.
func (w Window) Validate(t time.Time) error {
	if !w.Enabled() {
		return nil
	}

	start, err := time.Parse("15:04", w.Start)
	if err != nil {
		return fmt.Errorf("invalid window start %q: %w", w.Start, err)
	}
	end, err := time.Parse("15:04", w.End)
	if err != nil {
		return fmt.Errorf("invalid window end %q: %w", w.End, err)
	}

	minutes := t.Hour()*60 + t.Minute()
	lo := start.Hour()*60 + start.Minute()
	hi := end.Hour()*60 + end.Minute()
	if minutes < lo || minutes > hi {
		return fmt.Errorf("time %s is outside working hours %s-%s",
			t.Format("15:04"), w.Start, w.End)
	}

	if w.SlotMinutes > 0 && (minutes-lo)%w.SlotMinutes != 0 {
		return fmt.Errorf("time %s is not on a %d-minute slot boundary",
			t.Format("15:04"), w.SlotMinutes)
	}
	return nil
}
