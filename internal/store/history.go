package store

import (
	"context"
	"fmt"
	"time"

	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/visibility"
)

const historyAppendAttempts = 3

// nextHistID allocates the next ledger id with a single atomic
// increment-and-get. No two callers ever observe the same id; gaps from
// failed appends are acceptable and expected.
func (s *gormStore) nextHistID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.WithContext(ctx).
		Raw("UPDATE counters SET value = value + 1 WHERE name = ? RETURNING value", model.HistoryCounterName).
		Scan(&id).Error
	if err != nil {
		return 0, fmt.Errorf("failed to bump history counter: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("history counter row %q is missing", model.HistoryCounterName)
	}
	return id, nil
}

// appendHistory writes one ledger entry, retrying with a fresh id on each
// attempt. A failed attempt burns its id rather than reuse it.
func (s *gormStore) appendHistory(ctx context.Context, entry model.HistoryEntry) (model.HistoryEntry, error) {
	var lastErr error
	for attempt := 0; attempt < historyAppendAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 20 * time.Millisecond)
		}

		id, err := s.nextHistID(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		entry.HistID = id

		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			lastErr = err
			continue
		}
		return entry, nil
	}
	return model.HistoryEntry{}, fmt.Errorf("%w: append failed after %d attempts: %v",
		ErrConsistency, historyAppendAttempts, lastErr)
}

// QueryHistory lists ledger entries newest first, ties broken by hist_id
// descending. The caller's visibility scope is ANDed with the filter.
func (s *gormStore) QueryHistory(ctx context.Context, scope visibility.Scope, f HistoryFilter, p PageRequest) (Page[model.HistoryEntry], error) {
	q := s.db.WithContext(ctx).Model(&model.HistoryEntry{}).Scopes(scope.History())

	if f.BedID != "" {
		q = q.Where("history_entries.bed_id = ?", f.BedID)
	}
	if f.ServiceID != "" {
		q = q.Where("history_entries.service_id = ?", f.ServiceID)
	}
	if f.StatusID != nil {
		q = q.Where("history_entries.status_id = ?", *f.StatusID)
	}
	if f.Actor != "" {
		q = q.Where("history_entries.actor = ?", f.Actor)
	}
	if f.From != nil {
		q = q.Where("history_entries.timestamp >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("history_entries.timestamp <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[model.HistoryEntry]{}, fmt.Errorf("failed to count history: %w", err)
	}

	var items []model.HistoryEntry
	if err := q.Order("timestamp DESC, hist_id DESC").
		Offset(p.offset()).Limit(p.limit()).
		Find(&items).Error; err != nil {
		return Page[model.HistoryEntry]{}, fmt.Errorf("failed to query history: %w", err)
	}

	return newPage(items, total, p), nil
}
