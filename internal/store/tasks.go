package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/visibility"
)

// taskSortFields whitelists the sortable columns for task listings.
var taskSortFields = map[string]string{
	"created_at":   "task_items.created_at",
	"completed_at": "task_items.completed_at",
	"bed_id":       "task_items.bed_id",
	"service_id":   "task_items.service_id",
	"kind":         "task_items.kind",
	"urgent":       "task_items.urgent",
	"done":         "task_items.done",
}

// ListTasks pages through task items. Search matches bed id, service name
// and category label; the visibility scope is ANDed with the filter.
func (s *gormStore) ListTasks(ctx context.Context, scope visibility.Scope, f TaskFilter, p PageRequest) (Page[model.TaskItem], error) {
	q := s.db.WithContext(ctx).Model(&model.TaskItem{}).Scopes(scope.Tasks())

	if f.Kind != nil {
		q = q.Where("task_items.kind = ?", *f.Kind)
	}
	if f.Done != nil {
		q = q.Where("task_items.done = ?", *f.Done)
	}
	if f.Urgent != nil {
		q = q.Where("task_items.urgent = ?", *f.Urgent)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.
			Joins("LEFT JOIN services ON services.id = task_items.service_id").
			Joins("LEFT JOIN statuses ON statuses.id = task_items.category_id").
			Where("task_items.bed_id LIKE ? OR services.name LIKE ? OR statuses.label LIKE ?",
				pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[model.TaskItem]{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	order := "task_items.created_at DESC"
	if col, ok := taskSortFields[f.SortBy]; ok {
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		order = col + " " + dir
	}

	var items []model.TaskItem
	if err := q.Order(order).Offset(p.offset()).Limit(p.limit()).Find(&items).Error; err != nil {
		return Page[model.TaskItem]{}, fmt.Errorf("failed to query tasks: %w", err)
	}
	return newPage(items, total, p), nil
}

// UpdateTask applies a partial update to one task. The bed is never
// touched: closing a task does not free the bed, and a later transition of
// the bed does not reopen or close tasks.
func (s *gormStore) UpdateTask(ctx context.Context, scope visibility.Scope, taskID string, patch TaskPatch) (model.TaskItem, error) {
	if patch.CategoryID != nil && !model.KnownSubStatus(*patch.CategoryID) {
		return model.TaskItem{}, fmt.Errorf("%w: %d is not a cleaning sub-status", ErrValidation, *patch.CategoryID)
	}

	var task model.TaskItem
	err := s.db.WithContext(ctx).Scopes(scope.Tasks()).First(&task, "task_items.id = ?", taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TaskItem{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
		}
		return model.TaskItem{}, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}

	updates := make(map[string]any)
	if patch.Done != nil {
		updates["done"] = *patch.Done
		if *patch.Done && patch.CompletedAt == nil && task.CompletedAt == nil {
			updates["completed_at"] = time.Now().UTC()
		}
		if !*patch.Done {
			updates["completed_at"] = nil
		}
	}
	if patch.Urgent != nil {
		updates["urgent"] = *patch.Urgent
	}
	if patch.Assignee != nil {
		updates["assignee"] = *patch.Assignee
	}
	if patch.CompletedAt != nil {
		updates["completed_at"] = *patch.CompletedAt
	}
	if patch.CategoryID != nil {
		updates["category_id"] = *patch.CategoryID
	}
	if len(updates) == 0 {
		return task, nil
	}

	if err := s.db.WithContext(ctx).Model(&task).Updates(updates).Error; err != nil {
		return model.TaskItem{}, fmt.Errorf("failed to update task %s: %w", taskID, err)
	}

	if err := s.db.WithContext(ctx).First(&task, "id = ?", taskID).Error; err != nil {
		return model.TaskItem{}, fmt.Errorf("failed to reload task %s: %w", taskID, err)
	}
	return task, nil
}

// MarkOverdueTasksUrgent flags open, non-urgent tasks whose bed's
// scheduled cleaning/maintenance time is more than grace past now. It
// returns the newly urgent tasks so the caller can notify.
func (s *gormStore) MarkOverdueTasksUrgent(ctx context.Context, now time.Time, grace time.Duration) ([]model.TaskItem, error) {
	cutoff := now.Add(-grace)

	var overdue []model.TaskItem
	err := s.db.WithContext(ctx).
		Model(&model.TaskItem{}).
		Joins("JOIN beds ON beds.bed_id = task_items.bed_id").
		Where("task_items.done = ? AND task_items.urgent = ?", false, false).
		Where(
			"(task_items.kind = ? AND beds.scheduled_cleaning_at IS NOT NULL AND beds.scheduled_cleaning_at < ?)"+
				" OR (task_items.kind = ? AND beds.scheduled_maintenance_at IS NOT NULL AND beds.scheduled_maintenance_at < ?)",
			model.StatusToClean, cutoff, model.StatusMaintenance, cutoff,
		).
		Find(&overdue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue tasks: %w", err)
	}
	if len(overdue) == 0 {
		return nil, nil
	}

	ids := make([]string, len(overdue))
	for i, task := range overdue {
		ids[i] = task.ID
		overdue[i].Urgent = true
	}
	err = s.db.WithContext(ctx).
		Model(&model.TaskItem{}).
		Where("id IN ?", ids).
		Update("urgent", true).Error
	if err != nil {
		return nil, fmt.Errorf("failed to flag overdue tasks: %w", err)
	}
	return overdue, nil
}
