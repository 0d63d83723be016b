package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/visibility"
)

// Round-trip property: create N beds, take K of them out of Free, and the
// live aggregate must report exactly N-K available.
func TestServiceCapacityRoundTrip(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()

	const n, k = 10, 4
	ids := seedWard(t, s, "NORTH", "MED-01", n)

	for i := 0; i < k; i++ {
		_, err := s.Transition(ctx, managerScope(), ids[i], model.StatusOccupied, TransitionRequest{Actor: "u1"})
		require.NoError(t, err)
	}

	capacity, err := s.ServiceCapacity(ctx, managerScope(), "MED-01")
	require.NoError(t, err)
	assert.Equal(t, int64(n), capacity.Total)
	assert.Equal(t, int64(n-k), capacity.Available)

	// Bring one back to Free; the figure must move immediately.
	_, err = s.Transition(ctx, managerScope(), ids[0], model.StatusFree, TransitionRequest{Actor: "u1"})
	require.NoError(t, err)

	capacity, err = s.ServiceCapacity(ctx, managerScope(), "MED-01")
	require.NoError(t, err)
	assert.Equal(t, int64(n-k+1), capacity.Available)
}

func TestSectorCapacitySumsServices(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()

	medIDs := seedWard(t, s, "NORTH", "MED-01", 3)
	seedWard(t, s, "NORTH", "SURG", 2)

	_, err := s.Transition(ctx, managerScope(), medIDs[0], model.StatusMaintenance, TransitionRequest{Actor: "u1"})
	require.NoError(t, err)

	capacity, err := s.SectorCapacity(ctx, managerScope(), "NORTH")
	require.NoError(t, err)
	assert.Equal(t, int64(5), capacity.Total)
	assert.Equal(t, int64(4), capacity.Available)
}

func TestCapacityExcludesSoftDeletedBeds(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()
	ids := seedWard(t, s, "NORTH", "MED-01", 3)

	require.NoError(t, s.DeleteBed(ctx, managerScope(), ids[2]))

	capacity, err := s.ServiceCapacity(ctx, managerScope(), "MED-01")
	require.NoError(t, err)
	assert.Equal(t, int64(2), capacity.Total)
	assert.Equal(t, int64(2), capacity.Available)
}

func TestCapacityUnknownIDs(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()

	_, err := s.ServiceCapacity(ctx, managerScope(), "NOPE")
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = s.SectorCapacity(ctx, managerScope(), "NOPE")
	assert.ErrorIs(t, err, ErrSectorNotFound)
}

func TestCapacityVisibility(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()
	seedWard(t, s, "NORTH", "MED-01", 3)
	seedWard(t, s, "NORTH", "SURG", 2)

	// A caller scoped to SURG cannot read MED-01's capacity at all.
	_, err := s.ServiceCapacity(ctx, visibility.ServiceScoped("SURG"), "MED-01")
	assert.ErrorIs(t, err, ErrServiceNotFound)

	// Sector capacity only counts the caller's services.
	capacity, err := s.SectorCapacity(ctx, visibility.ServiceScoped("SURG"), "NORTH")
	require.NoError(t, err)
	assert.Equal(t, int64(2), capacity.Total)

	// Empty service set means empty results, never everything.
	capacity, err = s.SectorCapacity(ctx, visibility.ServiceScoped(), "NORTH")
	require.NoError(t, err)
	assert.Zero(t, capacity.Total)
}

func TestServiceCapacitiesSummary(t *testing.T) {
	s := newTestStore(t, Policy{})
	ctx := context.Background()

	ids := seedWard(t, s, "NORTH", "MED-01", 3)
	_, err := s.CreateService(ctx, "EMPTY", "Empty Service", "NORTH")
	require.NoError(t, err)

	_, err = s.Transition(ctx, managerScope(), ids[1], model.StatusOccupied, TransitionRequest{Actor: "u1"})
	require.NoError(t, err)

	summaries, err := s.ServiceCapacities(ctx, managerScope())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := make(map[string]ServiceCapacitySummary, len(summaries))
	for _, sum := range summaries {
		byID[sum.ServiceID] = sum
	}
	assert.Equal(t, int64(3), byID["MED-01"].Total)
	assert.Equal(t, int64(2), byID["MED-01"].Available)
	assert.Zero(t, byID["EMPTY"].Total)
}
