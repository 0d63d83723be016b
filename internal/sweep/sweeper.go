// Package sweep runs the overdue-task sweeper: a background loop that
// flags open tasks as urgent once their bed's scheduled time is past due,
// and notifies subscribed staff.
package sweep

import (
	"context"
	"log"
	"time"

	"bedstatus-backend/config"
	"bedstatus-backend/internal/notification"
	"bedstatus-backend/internal/store"
)

// Service orchestrates the periodic sweep.
type Service struct {
	cfg        *config.Config
	store      store.Store
	workerPool *notification.WorkerPool
}

// NewService creates a sweeper over the given store. The worker pool may
// be nil when push notifications are disabled.
func NewService(cfg *config.Config, s store.Store, wp *notification.WorkerPool) *Service {
	return &Service{cfg: cfg, store: s, workerPool: wp}
}

// Run starts the sweep loop. It blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sweep.Enabled {
		log.Println("Sweeper is disabled. Not starting.")
		return
	}
	log.Printf("Starting sweeper (interval %s)...", s.cfg.Sweep.Interval)

	ticker := time.NewTicker(s.cfg.Sweep.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepOnce(ctx)
		case <-ctx.Done():
			log.Println("Sweeper shutting down")
			return
		}
	}
}

func (s *Service) sweepOnce(ctx context.Context) {
	grace := time.Duration(s.cfg.Sweep.OverdueGraceMinutes) * time.Minute
	flagged, err := s.store.MarkOverdueTasksUrgent(ctx, time.Now().UTC(), grace)
	if err != nil {
		log.Printf("Sweep failed: %v", err)
		return
	}
	if len(flagged) == 0 {
		return
	}
	log.Printf("Sweep flagged %d overdue tasks as urgent", len(flagged))

	if s.workerPool == nil {
		return
	}
	for _, task := range flagged {
		s.workerPool.Dispatch(notification.TaskNotice{
			TaskID:    task.ID,
			BedID:     task.BedID,
			ServiceID: task.ServiceID,
			Kind:      task.Kind,
			Urgent:    true,
		})
	}
}
