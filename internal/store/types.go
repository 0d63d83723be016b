package store

import (
	"time"

	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/schedule"
)

// Policy carries the configurable transition rules. It is a plain value
// given to the store at construction; nothing mutates it at runtime.
type Policy struct {
	// GateInactive, when true, rejects transitions on an inactive bed
	// unless the target is Free. When false, transitions are always
	// allowed regardless of the current state.
	GateInactive bool

	// RequireReservationTime, when true, makes Reserved without a
	// scheduled reservation timestamp a validation error.
	RequireReservationTime bool

	CleaningHours    schedule.Window
	MaintenanceHours schedule.Window
}

// TransitionRequest is the contextual payload of a status transition.
type TransitionRequest struct {
	Actor string // required

	// SubStatusID is the cleaning kind, meaningful only for To-Clean.
	SubStatusID *int64

	// ScheduledAt is interpreted against the target status: cleaning time
	// for To-Clean, maintenance time for Maintenance, reservation time for
	// Reserved. Ignored for targets with no pending event.
	ScheduledAt *time.Time

	// ForWhom is copied onto a created task for downstream display.
	ForWhom string
}

// TransitionResult is the outcome of a successful transition. Bed is the
// contract's primary value; History and Task let the caller dispatch
// notifications without re-reading.
type TransitionResult struct {
	Bed     model.Bed
	History model.HistoryEntry
	Task    *model.TaskItem
}

// CreateBedRequest provisions one bed for a service.
type CreateBedRequest struct {
	BedID             string
	ServiceID         string // optional; derived from BedID when empty
	Gender            string
	EmergencyReserved bool
}

// BedFilter narrows bed listings.
type BedFilter struct {
	ServiceID string
	StatusID  *int64
}

// HistoryFilter narrows ledger queries. From/To are inclusive bounds; the
// HTTP layer widens date-only values to start/end of day before calling.
type HistoryFilter struct {
	BedID     string
	ServiceID string
	StatusID  *int64
	Actor     string
	From      *time.Time
	To        *time.Time
}

// TaskFilter narrows task listings. Search matches bed id, service name
// and category label. SortBy must be one of the whitelisted fields.
type TaskFilter struct {
	Kind   *int64
	Done   *bool
	Urgent *bool
	Search string
	SortBy string
	Desc   bool
}

// TaskPatch is a partial update of a task. Nil fields are left untouched.
type TaskPatch struct {
	Done        *bool
	Urgent      *bool
	Assignee    *string
	CompletedAt *time.Time
	CategoryID  *int64
}

// Capacity is a live head count for a service or sector.
type Capacity struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
}

// ServiceCapacitySummary is one row of the per-service capacity listing.
type ServiceCapacitySummary struct {
	ServiceID string `json:"serviceId"`
	Name      string `json:"name"`
	SectorID  string `json:"sectorId"`
	Total     int64  `json:"total"`
	Available int64  `json:"available"`
}

// PageRequest is 1-based pagination input.
type PageRequest struct {
	Page    int
	PerPage int
}

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

func (p PageRequest) limit() int {
	if p.PerPage <= 0 {
		return defaultPerPage
	}
	if p.PerPage > maxPerPage {
		return maxPerPage
	}
	return p.PerPage
}

func (p PageRequest) offset() int {
	page := p.Page
	if page <= 1 {
		return 0
	}
	return (page - 1) * p.limit()
}

// Page is one page of results plus the unpaginated total.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"perPage"`
}

func newPage[T any](items []T, total int64, p PageRequest) Page[T] {
	page := p.Page
	if page <= 0 {
		page = 1
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: page, PerPage: p.limit()}
}
