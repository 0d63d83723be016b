package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bedstatus-backend/internal/db"
	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/visibility"
)

// newTestStore opens an in-memory SQLite database, migrates and seeds it,
// and returns a store with the given policy. SQLite cannot take concurrent
// writers, so the pool is capped at one connection; the store's own
// concurrency (per-bed locks, id allocation) is unaffected.
func newTestStore(t *testing.T, policy Policy) *gormStore {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))

	return NewGormStore(gdb, policy).(*gormStore)
}

func managerScope() visibility.Scope {
	return visibility.Manager()
}

func testBedID(serviceID string, seq int) string {
	return fmt.Sprintf("%s-%02d", serviceID, seq)
}

// seedWard creates a sector (if missing), a service and n Free beds under
// it, returning the bed ids.
func seedWard(t *testing.T, s *gormStore, sectorID, serviceID string, n int) []string {
	t.Helper()
	ctx := context.Background()

	var sector model.Sector
	if err := s.db.First(&sector, "id = ?", sectorID).Error; err != nil {
		_, err = s.CreateSector(ctx, sectorID, sectorID+" Wing")
		require.NoError(t, err)
	}

	_, err := s.CreateService(ctx, serviceID, serviceID+" Service", sectorID)
	require.NoError(t, err)

	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := testBedID(serviceID, i)
		_, err := s.CreateBed(ctx, managerScope(), CreateBedRequest{BedID: id})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}
