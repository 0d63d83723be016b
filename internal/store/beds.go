package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bedstatus-backend/internal/model"
	"bedstatus-backend/internal/parse"
	"bedstatus-backend/internal/visibility"
)

// CreateSector provisions a sector. The abbreviation is derived from the
// name once, here, and never recomputed.
func (s *gormStore) CreateSector(ctx context.Context, id, name string) (model.Sector, error) {
	if id == "" || name == "" {
		return model.Sector{}, fmt.Errorf("%w: sector id and name are required", ErrValidation)
	}
	sector := model.Sector{
		ID:           id,
		Name:         name,
		Abbreviation: parse.Abbreviate(name),
	}
	if err := s.db.WithContext(ctx).Create(&sector).Error; err != nil {
		return model.Sector{}, fmt.Errorf("failed to create sector %s: %w", id, err)
	}
	return sector, nil
}

// CreateService provisions a service under an existing sector.
func (s *gormStore) CreateService(ctx context.Context, id, name, sectorID string) (model.Service, error) {
	if id == "" || name == "" {
		return model.Service{}, fmt.Errorf("%w: service id and name are required", ErrValidation)
	}
	var sector model.Sector
	if err := s.db.WithContext(ctx).First(&sector, "id = ?", sectorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Service{}, fmt.Errorf("%w: %s", ErrSectorNotFound, sectorID)
		}
		return model.Service{}, fmt.Errorf("failed to load sector %s: %w", sectorID, err)
	}
	svc := model.Service{ID: id, Name: name, SectorID: sectorID}
	if err := s.db.WithContext(ctx).Create(&svc).Error; err != nil {
		return model.Service{}, fmt.Errorf("failed to create service %s: %w", id, err)
	}
	return svc, nil
}

// CreateBed provisions one bed. The bed id must follow <serviceId>-<NN>
// and agree with the owning service; new beds start Free.
func (s *gormStore) CreateBed(ctx context.Context, scope visibility.Scope, req CreateBedRequest) (model.Bed, error) {
	parsed, err := parse.ParseBedID(req.BedID)
	if err != nil {
		return model.Bed{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	serviceID := req.ServiceID
	if serviceID == "" {
		serviceID = parsed.ServiceID
	} else if serviceID != parsed.ServiceID {
		return model.Bed{}, fmt.Errorf("%w: bed id %s does not belong to service %s", ErrValidation, req.BedID, serviceID)
	}

	if !scope.AllowsService(serviceID) {
		return model.Bed{}, fmt.Errorf("%w: service %s is outside the caller's service set", ErrValidation, serviceID)
	}

	var svc model.Service
	if err := s.db.WithContext(ctx).First(&svc, "id = ?", serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Bed{}, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
		}
		return model.Bed{}, fmt.Errorf("failed to load service %s: %w", serviceID, err)
	}

	// Bed ids stay unique across soft deletes so ledger references never
	// become ambiguous.
	var existing model.Bed
	err = s.db.WithContext(ctx).Unscoped().First(&existing, "bed_id = ?", req.BedID).Error
	if err == nil {
		return model.Bed{}, fmt.Errorf("%w: bed %s already exists", ErrConflict, req.BedID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Bed{}, fmt.Errorf("failed to check bed %s: %w", req.BedID, err)
	}

	bed := model.Bed{
		BedID:              req.BedID,
		ServiceID:          serviceID,
		StatusID:           model.StatusFree,
		Active:             true,
		LastStatusChangeAt: time.Now().UTC(),
		Gender:             req.Gender,
		EmergencyReserved:  req.EmergencyReserved,
	}
	if err := s.db.WithContext(ctx).Create(&bed).Error; err != nil {
		return model.Bed{}, fmt.Errorf("failed to create bed %s: %w", req.BedID, err)
	}
	return bed, nil
}

// GetBed returns one bed visible to the caller.
func (s *gormStore) GetBed(ctx context.Context, scope visibility.Scope, bedID string) (model.Bed, error) {
	var bed model.Bed
	err := s.db.WithContext(ctx).Scopes(scope.Beds()).First(&bed, "beds.bed_id = ?", bedID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Bed{}, fmt.Errorf("%w: %s", ErrBedNotFound, bedID)
		}
		return model.Bed{}, fmt.Errorf("failed to load bed %s: %w", bedID, err)
	}
	return bed, nil
}

// ListBeds pages through beds visible to the caller.
func (s *gormStore) ListBeds(ctx context.Context, scope visibility.Scope, f BedFilter, p PageRequest) (Page[model.Bed], error) {
	q := s.db.WithContext(ctx).Model(&model.Bed{}).Scopes(scope.Beds())
	if f.ServiceID != "" {
		q = q.Where("beds.service_id = ?", f.ServiceID)
	}
	if f.StatusID != nil {
		q = q.Where("beds.status_id = ?", *f.StatusID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[model.Bed]{}, fmt.Errorf("failed to count beds: %w", err)
	}

	var items []model.Bed
	if err := q.Order("beds.bed_id ASC").Offset(p.offset()).Limit(p.limit()).Find(&items).Error; err != nil {
		return Page[model.Bed]{}, fmt.Errorf("failed to query beds: %w", err)
	}
	return newPage(items, total, p), nil
}

// DeleteBed soft-deletes a bed: it disappears from every read path while
// its history entries keep a valid reference.
func (s *gormStore) DeleteBed(ctx context.Context, scope visibility.Scope, bedID string) error {
	var bed model.Bed
	if err := s.db.WithContext(ctx).First(&bed, "bed_id = ?", bedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrBedNotFound, bedID)
		}
		return fmt.Errorf("failed to load bed %s: %w", bedID, err)
	}
	if !scope.AllowsService(bed.ServiceID) {
		return fmt.Errorf("%w: bed %s is outside the caller's service set", ErrValidation, bedID)
	}
	if err := s.db.WithContext(ctx).Delete(&bed).Error; err != nil {
		return fmt.Errorf("failed to delete bed %s: %w", bedID, err)
	}
	return nil
}
