package repository

import (
	"context"

	"gorm.io/gorm"

	"fleetdesk/backend/internal/model"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// VanRepository vehicles
type VanRepository interface {
	Create(ctx context.Context, van *model.Van) error
	GetByID(ctx context.Context, id string) (*model.Van, error)
	List(ctx context.Context, stationID, status string, offset, limit int) ([]model.Van, int64, error)
	Update(ctx context.Context, van *model.Van) error
	// RaiseMileage sets mileage to km unless the stored value is already higher.
	RaiseMileage(ctx context.Context, id string, km int) error
	Delete(ctx context.Context, id, deletedBy string) error
}

type vanRepo struct {
	db *gorm.DB
}

func NewVanRepo(db *gorm.DB) VanRepository {
	return &vanRepo{db: db}
}

func (r *vanRepo) Create(ctx context.Context, van *model.Van) error {
	return r.db.WithContext(ctx).Create(van).Error
}

func (r *vanRepo) GetByID(ctx context.Context, id string) (*model.Van, error) {
	var van model.Van
	if err := r.db.WithContext(ctx).Where("van_id = ?", id).First(&van).Error; err != nil {
		return nil, err
	}
	return &van, nil
}

func (r *vanRepo) List(ctx context.Context, stationID, status string, offset, limit int) ([]model.Van, int64, error) {
	var vans []model.Van
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Van{})
	if stationID != "" {
		db = db.Where("station_id = ?", stationID)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("plate_number ASC").
		Find(&vans).Error; err != nil {
		return nil, 0, err
	}
	return vans, total, nil
}

func (r *vanRepo) Update(ctx context.Context, van *model.Van) error {
	oldVersion := van.Version
	res := r.db.WithContext(ctx).
		Model(&model.Van{}).
		Where("van_id = ? AND version = ?", van.VanID, oldVersion).
		Updates(map[string]interface{}{
			"station_id":   van.StationID,
			"plate_number": van.PlateNumber,
			"model":        van.Model,
			"vin":          van.VIN,
			"mileage":      van.Mileage,
			"status":       van.Status,
			"updated_by":   van.UpdatedBy,
			"updated_at":   gorm.Expr("NOW()"),
			"version":      oldVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	van.Version = oldVersion + 1
	return nil
}

func (r *vanRepo) RaiseMileage(ctx context.Context, id string, km int) error {
	return r.db.WithContext(ctx).
		Model(&model.Van{}).
		Where("van_id = ? AND mileage < ?", id, km).
		Updates(map[string]interface{}{
			"mileage":    km,
			"updated_at": gorm.Expr("NOW()"),
			"version":    gorm.Expr("version + 1"),
		}).Error
}

func (r *vanRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Van{}, "van_id", id, deletedBy)
}
