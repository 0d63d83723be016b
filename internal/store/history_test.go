package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/visibility"
)

func TestQueryHistoryOrderingAndTies(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 1)

	// Same timestamp for all three: ordering must fall back to hist_id
	// descending.
	ts := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.appendHistory(ctx, model.HistoryEntry{
			BedID:            "MED-01-01",
			ServiceID:        "MED-01",
			StatusID:         model.StatusOccupied,
			PreviousStatusID: model.StatusFree,
			Actor:            "u1",
			Timestamp:        ts,
		})
		require.NoError(t, err)
	}

	page, err := s.QueryHistory(ctx, managerScope(), HistoryFilter{}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, int64(3), page.Total)

	for i := 1; i < len(page.Items); i++ {
		assert.Greater(t, page.Items[i-1].HistID, page.Items[i].HistID)
	}
}

func TestQueryHistoryFilters(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 2)

	entries := []model.HistoryEntry{
		{BedID: "MED-01-01", ServiceID: "MED-01", StatusID: model.StatusOccupied, PreviousStatusID: model.StatusFree, Actor: "alice",
			Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		{BedID: "MED-01-01", ServiceID: "MED-01", StatusID: model.StatusToClean, PreviousStatusID: model.StatusOccupied, Actor: "bob",
			Timestamp: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
		{BedID: "MED-01-02", ServiceID: "MED-01", StatusID: model.StatusMaintenance, PreviousStatusID: model.StatusFree, Actor: "alice",
			Timestamp: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)},
	}
	for _, e := range entries {
		_, err := s.appendHistory(ctx, e)
		require.NoError(t, err)
	}

	t.Run("by bed", func(t *testing.T) {
		page, err := s.QueryHistory(ctx, managerScope(), HistoryFilter{BedID: "MED-01-02"}, PageRequest{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, model.StatusMaintenance, page.Items[0].StatusID)
	})

	t.Run("by actor", func(t *testing.T) {
		page, err := s.QueryHistory(ctx, managerScope(), HistoryFilter{Actor: "alice"}, PageRequest{})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
	})

	t.Run("by status", func(t *testing.T) {
		page, err := s.QueryHistory(ctx, managerScope(), HistoryFilter{StatusID: ptr(model.StatusToClean)}, PageRequest{})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	})

	t.Run("inclusive date range", func(t *testing.T) {
		from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)
		page, err := s.QueryHistory(ctx, managerScope(), HistoryFilter{From: &from, To: &to}, PageRequest{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "bob", page.Items[0].Actor)
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := s.QueryHistory(ctx, managerScope(), HistoryFilter{}, PageRequest{Page: 2, PerPage: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Items, 1)
	})
}

func TestQueryHistoryCleaningRoleScope(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 1)

	entries := []model.HistoryEntry{
		{BedID: "MED-01-01", ServiceID: "MED-01", StatusID: model.StatusToClean, PreviousStatusID: model.StatusOccupied, Actor: "u1", Timestamp: time.Now().UTC()},
		{BedID: "MED-01-01", ServiceID: "MED-01", StatusID: model.StatusFree, PreviousStatusID: model.StatusToClean, Actor: "u1", Timestamp: time.Now().UTC()},
		{BedID: "MED-01-01", ServiceID: "MED-01", StatusID: model.StatusOccupied, PreviousStatusID: model.StatusFree, Actor: "u1", Timestamp: time.Now().UTC()},
	}
	for _, e := range entries {
		_, err := s.appendHistory(ctx, e)
		require.NoError(t, err)
	}

	page, err := s.QueryHistory(ctx, visibility.CleaningStaff(), HistoryFilter{}, PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, e := range page.Items {
		isCleaning := e.StatusID == model.StatusToClean || e.PreviousStatusID == model.StatusToClean
		assert.True(t, isCleaning, "entry %d leaked to cleaning staff", e.HistID)
	}
}

// A consistency failure must be surfaced, never swallowed: exhausting the
// retries yields ErrConsistency.
func TestAppendHistoryExhaustedRetries(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()

	// Remove the counter row so every id allocation fails.
	require.NoError(t, s.db.Where("name = ?", model.HistoryCounterName).Delete(&model.Counter{}).Error)

	_, err := s.appendHistory(ctx, model.HistoryEntry{
		BedID: "MED-01-01", ServiceID: "MED-01",
		StatusID: model.StatusFree, PreviousStatusID: model.StatusFree,
		Actor: "u1", Timestamp: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrConsistency)
}
