package store

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/visibility"
)

// Store defines the interface for all core operations.
type Store interface {
	DB() *gorm.DB

	CreateSector(ctx context.Context, id, name string) (model.Sector, error)
	CreateService(ctx context.Context, id, name, sectorID string) (model.Service, error)

	CreateBed(ctx context.Context, scope visibility.Scope, req CreateBedRequest) (model.Bed, error)
	GetBed(ctx context.Context, scope visibility.Scope, bedID string) (model.Bed, error)
	ListBeds(ctx context.Context, scope visibility.Scope, f BedFilter, p PageRequest) (Page[model.Bed], error)
	DeleteBed(ctx context.Context, scope visibility.Scope, bedID string) error

	Transition(ctx context.Context, scope visibility.Scope, bedID string, targetStatusID int64, req TransitionRequest) (TransitionResult, error)

	QueryHistory(ctx context.Context, scope visibility.Scope, f HistoryFilter, p PageRequest) (Page[model.HistoryEntry], error)

	ServiceCapacity(ctx context.Context, scope visibility.Scope, serviceID string) (Capacity, error)
	SectorCapacity(ctx context.Context, scope visibility.Scope, sectorID string) (Capacity, error)
	ServiceCapacities(ctx context.Context, scope visibility.Scope) ([]ServiceCapacitySummary, error)

	ListTasks(ctx context.Context, scope visibility.Scope, f TaskFilter, p PageRequest) (Page[model.TaskItem], error)
	UpdateTask(ctx context.Context, scope visibility.Scope, taskID string, patch TaskPatch) (model.TaskItem, error)
	MarkOverdueTasksUrgent(ctx context.Context, now time.Time, grace time.Duration) ([]model.TaskItem, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db     *gorm.DB
	policy Policy
	locks  bedLocks
}

// NewGormStore creates a new GORM-backed store with the given policy.
func NewGormStore(db *gorm.DB, policy Policy) Store {
	return &gormStore{
		db:     db,
		policy: policy,
		locks:  bedLocks{locks: make(map[string]*sync.Mutex)},
	}
}

// DB exposes the underlying handle for plumbing that sits outside the core
// contracts (push subscriptions, health checks).
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// bedLocks serializes transitions per bed id. Different beds transition
// independently; two transitions on the same bed never interleave.
type bedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *bedLocks) acquire(bedID string) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[bedID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[bedID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m
}
