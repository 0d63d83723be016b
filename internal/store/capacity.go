package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/visibility"
)

// Capacity is always computed fresh from the bed rows. Several independent
// write paths can change a bed's status, so no stored counter is trusted.

func (s *gormStore) bedCounts(ctx context.Context, serviceIDs []string) (Capacity, error) {
	var counts Capacity
	err := s.db.WithContext(ctx).
		Model(&model.Bed{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status_id = ? THEN 1 ELSE 0 END), 0) AS available", model.StatusFree).
		Where("service_id IN ?", serviceIDs).
		Scan(&counts).Error
	if err != nil {
		return Capacity{}, fmt.Errorf("failed to aggregate beds: %w", err)
	}
	return counts, nil
}

// ServiceCapacity returns the live bed counts for one service.
func (s *gormStore) ServiceCapacity(ctx context.Context, scope visibility.Scope, serviceID string) (Capacity, error) {
	var svc model.Service
	err := s.db.WithContext(ctx).Scopes(scope.Services()).First(&svc, "services.id = ?", serviceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Capacity{}, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
		}
		return Capacity{}, fmt.Errorf("failed to load service %s: %w", serviceID, err)
	}
	return s.bedCounts(ctx, []string{serviceID})
}

// SectorCapacity sums the capacities of the sector's visible services.
func (s *gormStore) SectorCapacity(ctx context.Context, scope visibility.Scope, sectorID string) (Capacity, error) {
	var sector model.Sector
	err := s.db.WithContext(ctx).First(&sector, "id = ?", sectorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Capacity{}, fmt.Errorf("%w: %s", ErrSectorNotFound, sectorID)
		}
		return Capacity{}, fmt.Errorf("failed to load sector %s: %w", sectorID, err)
	}

	var serviceIDs []string
	err = s.db.WithContext(ctx).Model(&model.Service{}).Scopes(scope.Services()).
		Where("services.sector_id = ?", sectorID).
		Pluck("services.id", &serviceIDs).Error
	if err != nil {
		return Capacity{}, fmt.Errorf("failed to list services of sector %s: %w", sectorID, err)
	}
	if len(serviceIDs) == 0 {
		return Capacity{}, nil
	}
	return s.bedCounts(ctx, serviceIDs)
}

// ServiceCapacities lists every visible service with its live counts: one
// pass over services, one grouped pass over beds, merged in memory.
func (s *gormStore) ServiceCapacities(ctx context.Context, scope visibility.Scope) ([]ServiceCapacitySummary, error) {
	var services []model.Service
	if err := s.db.WithContext(ctx).Scopes(scope.Services()).Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve services: %w", err)
	}

	type aggRow struct {
		ServiceID string
		Total     int64
		Available int64
	}
	var aggs []aggRow
	err := s.db.WithContext(ctx).
		Model(&model.Bed{}).
		Select("service_id, COUNT(*) AS total, COALESCE(SUM(CASE WHEN status_id = ? THEN 1 ELSE 0 END), 0) AS available", model.StatusFree).
		Group("service_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate beds: %w", err)
	}

	aggMap := make(map[string]aggRow, len(aggs))
	for _, a := range aggs {
		aggMap[a.ServiceID] = a
	}

	summaries := make([]ServiceCapacitySummary, 0, len(services))
	for _, svc := range services {
		a := aggMap[svc.ID] // zero value when the service has no beds
		summaries = append(summaries, ServiceCapacitySummary{
			ServiceID: svc.ID,
			Name:      svc.Name,
			SectorID:  svc.SectorID,
			Total:     a.Total,
			Available: a.Available,
		})
	}
	return summaries, nil
}
