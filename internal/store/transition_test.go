package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/schedule"
	"bedstatus-backend/internal/visibility"
)

func ptr[T any](v T) *T { return &v }

func TestTransitionFreeToDeepClean(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 3)

	result, err := s.Transition(ctx, managerScope(), "MED-01-03", model.StatusToClean, TransitionRequest{
		Actor:       "u1",
		SubStatusID: ptr(model.SubStatusDeepCleaning),
	})
	require.NoError(t, err)

	bed := result.Bed
	assert.Equal(t, model.StatusToClean, bed.StatusID)
	require.NotNil(t, bed.SubStatusID)
	assert.Equal(t, model.SubStatusDeepCleaning, *bed.SubStatusID)
	assert.False(t, bed.Active)

	assert.Equal(t, model.StatusFree, result.History.PreviousStatusID)
	assert.Equal(t, model.StatusToClean, result.History.StatusID)
	assert.Equal(t, "u1", result.History.Actor)
	assert.Positive(t, result.History.HistID)

	require.NotNil(t, result.Task)
	assert.Equal(t, model.StatusToClean, result.Task.Kind)
	assert.False(t, result.Task.Done)

	var taskCount int64
	require.NoError(t, s.db.Model(&model.TaskItem{}).Where("bed_id = ?", "MED-01-03").Count(&taskCount).Error)
	assert.Equal(t, int64(1), taskCount)
}

// Every successful transition must leave the bed with active == (Free),
// and exactly the scheduled timestamp matching the new status.
func TestTransitionDerivedFieldInvariants(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 1)

	cleanAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	maintAt := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	reserveAt := time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)

	steps := []struct {
		target int64
		req    TransitionRequest
	}{
		{model.StatusToClean, TransitionRequest{Actor: "u1", ScheduledAt: &cleanAt, SubStatusID: ptr(model.SubStatusStandardCleaning)}},
		{model.StatusMaintenance, TransitionRequest{Actor: "u1", ScheduledAt: &maintAt}},
		{model.StatusReserved, TransitionRequest{Actor: "u1", ScheduledAt: &reserveAt}},
		{model.StatusOccupied, TransitionRequest{Actor: "u1"}},
		{model.StatusFree, TransitionRequest{Actor: "u1"}},
	}

	for _, step := range steps {
		result, err := s.Transition(ctx, managerScope(), "MED-01-01", step.target, step.req)
		require.NoError(t, err, "target %d", step.target)
		bed := result.Bed

		assert.Equal(t, step.target == model.StatusFree, bed.Active, "active flag for target %d", step.target)

		scheduled := 0
		if bed.ScheduledCleaningAt != nil {
			scheduled++
			assert.Equal(t, model.StatusToClean, bed.StatusID)
		}
		if bed.ScheduledMaintenanceAt != nil {
			scheduled++
			assert.Equal(t, model.StatusMaintenance, bed.StatusID)
		}
		if bed.ScheduledReservationAt != nil {
			scheduled++
			assert.Equal(t, model.StatusReserved, bed.StatusID)
		}
		assert.LessOrEqual(t, scheduled, 1, "at most one scheduled timestamp for target %d", step.target)

		if bed.SubStatusID != nil {
			assert.Equal(t, model.StatusToClean, bed.StatusID, "sub-status only valid on To-Clean")
		}
	}

	// Final state: Free, everything cleared.
	bed, err := s.GetBed(ctx, managerScope(), "MED-01-01")
	require.NoError(t, err)
	assert.True(t, bed.Active)
	assert.Nil(t, bed.ScheduledCleaningAt)
	assert.Nil(t, bed.ScheduledMaintenanceAt)
	assert.Nil(t, bed.ScheduledReservationAt)
	assert.Nil(t, bed.SubStatusID)
}

func TestTransitionRejections(t *testing.T) {
	s := newTestStore(t, Policy{RequireReservationTime: true})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 1)

	testCases := []struct {
		name    string
		bedID   string
		target  int64
		req     TransitionRequest
		wantErr error
	}{
		{
			name:    "unknown bed",
			bedID:   "MED-01-99",
			target:  model.StatusOccupied,
			req:     TransitionRequest{Actor: "u1"},
			wantErr: ErrBedNotFound,
		},
		{
			name:    "status not in catalog",
			bedID:   "MED-01-01",
			target:  42,
			req:     TransitionRequest{Actor: "u1"},
			wantErr: ErrStatusUnknown,
		},
		{
			name:    "sub-status is not a transition target",
			bedID:   "MED-01-01",
			target:  model.SubStatusDeepCleaning,
			req:     TransitionRequest{Actor: "u1"},
			wantErr: ErrStatusUnknown,
		},
		{
			name:    "missing actor",
			bedID:   "MED-01-01",
			target:  model.StatusOccupied,
			req:     TransitionRequest{},
			wantErr: ErrValidation,
		},
		{
			name:    "reserved without reservation time",
			bedID:   "MED-01-01",
			target:  model.StatusReserved,
			req:     TransitionRequest{Actor: "u1"},
			wantErr: ErrValidation,
		},
		{
			name:    "invalid cleaning sub-status",
			bedID:   "MED-01-01",
			target:  model.StatusToClean,
			req:     TransitionRequest{Actor: "u1", SubStatusID: ptr(int64(2))},
			wantErr: ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Transition(ctx, managerScope(), tc.bedID, tc.target, tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// None of the rejections may have produced history or tasks.
	var histCount, taskCount int64
	require.NoError(t, s.db.Model(&model.HistoryEntry{}).Count(&histCount).Error)
	require.NoError(t, s.db.Model(&model.TaskItem{}).Count(&taskCount).Error)
	assert.Zero(t, histCount)
	assert.Zero(t, taskCount)
}

func TestTransitionOutsideServiceSet(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 1)

	scope := visibility.ServiceScoped("SURG")
	_, err := s.Transition(ctx, scope, "MED-01-01", model.StatusOccupied, TransitionRequest{Actor: "u1"})
	assert.ErrorIs(t, err, ErrValidation)
}

// The inactive gate is a configurable policy: when on, a bed that is not
// Free only accepts a transition back to Free; when off, anything goes.
func TestTransitionInactiveGate(t *testing.T) {
	t.Run("gated", func(t *testing.T) {
		s := newTestStore(t, Policy{GateInactive: true})
		ctx := context.Background()
		seedWard(t, s, "NORTH", "MED-01", 1)

		_, err := s.Transition(ctx, managerScope(), "MED-01-01", model.StatusOccupied, TransitionRequest{Actor: "u1"})
		require.NoError(t, err)

		_, err = s.Transition(ctx, managerScope(), "MED-01-01", model.StatusToClean, TransitionRequest{Actor: "u1"})
		assert.ErrorIs(t, err, ErrValidation)

		_, err = s.Transition(ctx, managerScope(), "MED-01-01", model.StatusFree, TransitionRequest{Actor: "u1"})
		assert.NoError(t, err)
	})

	t.Run("permissive", func(t *testing.T) {
		s := newTestStore(t, Policy{GateInactive: false})
		ctx := context.Background()
		seedWard(t, s, "NORTH", "MED-01", 1)

		_, err := s.Transition(ctx, managerScope(), "MED-01-01", model.StatusOccupied, TransitionRequest{Actor: "u1"})
		require.NoError(t, err)

		_, err = s.Transition(ctx, managerScope(), "MED-01-01", model.StatusToClean, TransitionRequest{Actor: "u1"})
		assert.NoError(t, err)
	})
}

func TestTransitionScheduledTimeOutsideWorkingHours(t *testing.T) {
	s := newTestStore(t, Policy{
		CleaningHours: schedule.Window{Start: "08:00", End: "18:00", SlotMinutes: 30},
	})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 1)

	nightly := time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)
	_, err := s.Transition(ctx, managerScope(), "MED-01-01", model.StatusToClean, TransitionRequest{
		Actor:       "u1",
		ScheduledAt: &nightly,
	})
	assert.ErrorIs(t, err, ErrValidation)

	inHours := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	_, err = s.Transition(ctx, managerScope(), "MED-01-01", model.StatusToClean, TransitionRequest{
		Actor:       "u1",
		ScheduledAt: &inHours,
	})
	assert.NoError(t, err)
}

// 100 concurrent transitions across different beds must yield 100 distinct
// history ids.
func TestConcurrentTransitionsDistinctHistoryIDs(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()

	const n = 100
	_, err := s.CreateSector(ctx, "NORTH", "North Wing")
	require.NoError(t, err)
	_, err = s.CreateService(ctx, "MED-01", "Medicine", "NORTH")
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		_, err := s.CreateBed(ctx, managerScope(), CreateBedRequest{BedID: fmt.Sprintf("MED-01-%d", i)})
		require.NoError(t, err)
	}

	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := s.Transition(ctx, managerScope(), fmt.Sprintf("MED-01-%d", i), model.StatusOccupied, TransitionRequest{Actor: "u1"})
			assert.NoError(t, err)
			ids[i-1] = result.History.HistID
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, id := range ids {
		assert.Positive(t, id)
		assert.False(t, seen[id], "duplicate history id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}

// Two concurrent transitions on the same bed: the final state matches
// exactly one of the two requests and both appear in history.
func TestConcurrentTransitionsSameBed(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 1)

	var wg sync.WaitGroup
	targets := []int64{model.StatusOccupied, model.StatusOutOfService}
	for _, target := range targets {
		wg.Add(1)
		go func(target int64) {
			defer wg.Done()
			_, err := s.Transition(ctx, managerScope(), "MED-01-01", target, TransitionRequest{Actor: "u1"})
			assert.NoError(t, err)
		}(target)
	}
	wg.Wait()

	bed, err := s.GetBed(ctx, managerScope(), "MED-01-01")
	require.NoError(t, err)
	assert.Contains(t, targets, bed.StatusID)

	var entries []model.HistoryEntry
	require.NoError(t, s.db.Where("bed_id = ?", "MED-01-01").Order("hist_id ASC").Find(&entries).Error)
	require.Len(t, entries, 2)

	// The ledger records a total order: the second entry's previous status
	// is the first entry's new status.
	assert.Equal(t, model.StatusFree, entries[0].PreviousStatusID)
	assert.Equal(t, entries[0].StatusID, entries[1].PreviousStatusID)
}

func TestTransitionSoftDeletedBed(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 1)

	require.NoError(t, s.DeleteBed(ctx, managerScope(), "MED-01-01"))

	_, err := s.Transition(ctx, managerScope(), "MED-01-01", model.StatusOccupied, TransitionRequest{Actor: "u1"})
	assert.ErrorIs(t, err, ErrBedNotFound)
}
