package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/visibility"
)

// Transition moves a bed to the target status and produces the derived
// records: a ledger entry always, a task item for To-Clean/Maintenance.
// Transitions on the same bed are serialized; the bed write commits first,
// then the history append is retried until it lands or ErrConsistency is
// surfaced.
func (s *gormStore) Transition(ctx context.Context, scope visibility.Scope, bedID string, targetStatusID int64, req TransitionRequest) (TransitionResult, error) {
	if req.Actor == "" {
		return TransitionResult{}, fmt.Errorf("%w: actor is required", ErrValidation)
	}
	if !model.KnownStatus(targetStatusID) {
		return TransitionResult{}, fmt.Errorf("%w: %d", ErrStatusUnknown, targetStatusID)
	}

	lock := s.locks.acquire(bedID)
	defer lock.Unlock()

	var bed model.Bed
	if err := s.db.WithContext(ctx).First(&bed, "bed_id = ?", bedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TransitionResult{}, fmt.Errorf("%w: %s", ErrBedNotFound, bedID)
		}
		return TransitionResult{}, fmt.Errorf("failed to load bed %s: %w", bedID, err)
	}

	if !scope.AllowsService(bed.ServiceID) {
		return TransitionResult{}, fmt.Errorf("%w: bed %s is outside the caller's service set", ErrValidation, bedID)
	}

	if s.policy.GateInactive && !bed.Active && targetStatusID != model.StatusFree {
		return TransitionResult{}, fmt.Errorf("%w: bed %s is inactive and may only return to Free", ErrValidation, bedID)
	}

	if err := s.validateContext(targetStatusID, req); err != nil {
		return TransitionResult{}, err
	}

	now := time.Now().UTC()
	previousStatusID := bed.StatusID

	bed.StatusID = targetStatusID
	bed.ScheduledCleaningAt = nil
	bed.ScheduledMaintenanceAt = nil
	bed.ScheduledReservationAt = nil
	bed.SubStatusID = nil
	switch targetStatusID {
	case model.StatusToClean:
		bed.ScheduledCleaningAt = req.ScheduledAt
		bed.SubStatusID = req.SubStatusID
	case model.StatusMaintenance:
		bed.ScheduledMaintenanceAt = req.ScheduledAt
	case model.StatusReserved:
		bed.ScheduledReservationAt = req.ScheduledAt
	}
	bed.Active = targetStatusID == model.StatusFree
	bed.LastStatusChangeAt = now

	if err := s.db.WithContext(ctx).Save(&bed).Error; err != nil {
		return TransitionResult{}, fmt.Errorf("failed to persist bed %s: %w", bedID, err)
	}

	// The bed write is committed; from here the ledger must catch up.
	entry, err := s.appendHistory(ctx, model.HistoryEntry{
		BedID:            bed.BedID,
		ServiceID:        bed.ServiceID,
		StatusID:         targetStatusID,
		PreviousStatusID: previousStatusID,
		SubStatusID:      bed.SubStatusID,
		Actor:            req.Actor,
		Timestamp:        now,
	})
	if err != nil {
		return TransitionResult{}, err
	}

	result := TransitionResult{Bed: bed, History: entry}

	if targetStatusID == model.StatusToClean || targetStatusID == model.StatusMaintenance {
		task := model.TaskItem{
			ID:         uuid.NewString(),
			BedID:      bed.BedID,
			ServiceID:  bed.ServiceID,
			Kind:       targetStatusID,
			CategoryID: bed.SubStatusID,
			CreatedAt:  now,
			Urgent:     false,
			Done:       false,
			ForWhom:    req.ForWhom,
			Gender:     bed.Gender,
		}
		if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
			return TransitionResult{}, fmt.Errorf("failed to create task for bed %s: %w", bed.BedID, err)
		}
		result.Task = &task
	}

	return result, nil
}

// validateContext checks the status-specific payload against the policy.
func (s *gormStore) validateContext(targetStatusID int64, req TransitionRequest) error {
	switch targetStatusID {
	case model.StatusToClean:
		if req.SubStatusID != nil && !model.KnownSubStatus(*req.SubStatusID) {
			return fmt.Errorf("%w: %d is not a cleaning sub-status", ErrValidation, *req.SubStatusID)
		}
		if req.ScheduledAt != nil {
			if err := s.policy.CleaningHours.Validate(*req.ScheduledAt); err != nil {
				return fmt.Errorf("%w: scheduled cleaning: %v", ErrValidation, err)
			}
		}
	case model.StatusMaintenance:
		if req.ScheduledAt != nil {
			if err := s.policy.MaintenanceHours.Validate(*req.ScheduledAt); err != nil {
				return fmt.Errorf("%w: scheduled maintenance: %v", ErrValidation, err)
			}
		}
	case model.StatusReserved:
		if s.policy.RequireReservationTime && req.ScheduledAt == nil {
			return fmt.Errorf("%w: Reserved requires a reservation time", ErrValidation)
		}
	}
	return nil
}
