package repository

import (
	"context"

	"gorm.io/gorm"

	"fleetdesk/backend/internal/model"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// DriverFilter narrows driver lists. Empty fields do not filter.
type DriverFilter struct {
	StationID  string
	ActiveOnly bool
	Search     string // name or personnel number prefix
}

// DriverRepository drivers
type DriverRepository interface {
	Create(ctx context.Context, driver *model.Driver) error
	GetByID(ctx context.Context, id string) (*model.Driver, error)
	// ListByStation returns the station's active drivers ordered by name.
	ListByStation(ctx context.Context, stationID string) ([]model.Driver, error)
	List(ctx context.Context, f DriverFilter, offset, limit int) ([]model.Driver, int64, error)
	Update(ctx context.Context, driver *model.Driver) error
	Delete(ctx context.Context, id, deletedBy string) error
}

type driverRepo struct {
	db *gorm.DB
}

func NewDriverRepo(db *gorm.DB) DriverRepository {
	return &driverRepo{db: db}
}

func (r *driverRepo) Create(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Omit("Station").Create(driver).Error
}

func (r *driverRepo) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).
		Preload("Station").
		Where("driver_id = ?", id).
		First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepo) ListByStation(ctx context.Context, stationID string) ([]model.Driver, error) {
	var drivers []model.Driver
	err := r.db.WithContext(ctx).
		Where("station_id = ? AND is_active = ?", stationID, true).
		Order("last_name ASC, first_name ASC").
		Find(&drivers).Error
	return drivers, err
}

func (r *driverRepo) List(ctx context.Context, f DriverFilter, offset, limit int) ([]model.Driver, int64, error) {
	var drivers []model.Driver
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Driver{})
	if f.StationID != "" {
		db = db.Where("station_id = ?", f.StationID)
	}
	if f.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if f.Search != "" {
		like := f.Search + "%"
		db = db.Where("first_name ILIKE ? OR last_name ILIKE ? OR personnel_no ILIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Station").
		Offset(offset).Limit(limit).
		Order("last_name ASC, first_name ASC").
		Find(&drivers).Error; err != nil {
		return nil, 0, err
	}
	return drivers, total, nil
}

func (r *driverRepo) Update(ctx context.Context, driver *model.Driver) error {
	oldVersion := driver.Version
	res := r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Where("driver_id = ? AND version = ?", driver.DriverID, oldVersion).
		Updates(map[string]interface{}{
			"station_id":     driver.StationID,
			"first_name":     driver.FirstName,
			"last_name":      driver.LastName,
			"personnel_no":   driver.PersonnelNo,
			"phone":          driver.Phone,
			"email":          driver.Email,
			"licence_expiry": driver.LicenceExpiry,
			"is_active":      driver.IsActive,
			"updated_by":     driver.UpdatedBy,
			"updated_at":     gorm.Expr("NOW()"),
			"version":        oldVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	driver.Version = oldVersion + 1
	return nil
}

func (r *driverRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Driver{}, "driver_id", id, deletedBy)
}
