package repository

import (
	"context"

	"gorm.io/gorm"

	"fleetdesk/backend/internal/model"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// StationRepository depots
type StationRepository interface {
	Create(ctx context.Context, station *model.Station) error
	GetByID(ctx context.Context, id string) (*model.Station, error)
	GetByCode(ctx context.Context, code string) (*model.Station, error)
	List(ctx context.Context, activeOnly bool) ([]model.Station, error)
	Update(ctx context.Context, station *model.Station) error
	Delete(ctx context.Context, id, deletedBy string) error
	CountDrivers(ctx context.Context, stationID string) (int64, error)
}

type stationRepo struct {
	db *gorm.DB
}

func NewStationRepo(db *gorm.DB) StationRepository {
	return &stationRepo{db: db}
}

func (r *stationRepo) Create(ctx context.Context, station *model.Station) error {
	return r.db.WithContext(ctx).Create(station).Error
}

func (r *stationRepo) GetByID(ctx context.Context, id string) (*model.Station, error) {
	var station model.Station
	if err := r.db.WithContext(ctx).Where("station_id = ?", id).First(&station).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *stationRepo) GetByCode(ctx context.Context, code string) (*model.Station, error) {
	var station model.Station
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&station).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *stationRepo) List(ctx context.Context, activeOnly bool) ([]model.Station, error) {
	var stations []model.Station
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("code ASC").Find(&stations).Error
	return stations, err
}

func (r *stationRepo) Update(ctx context.Context, station *model.Station) error {
	oldVersion := station.Version
	res := r.db.WithContext(ctx).
		Model(&model.Station{}).
		Where("station_id = ? AND version = ?", station.StationID, oldVersion).
		Updates(map[string]interface{}{
			"code":       station.Code,
			"name":       station.Name,
			"address":    station.Address,
			"is_active":  station.IsActive,
			"updated_by": station.UpdatedBy,
			"updated_at": gorm.Expr("NOW()"),
			"version":    oldVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	station.Version = oldVersion + 1
	return nil
}

func (r *stationRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return softDelete(ctx, r.db, &model.Station{}, "station_id", id, deletedBy)
}

func (r *stationRepo) CountDrivers(ctx context.Context, stationID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Where("station_id = ?", stationID).
		Count(&count).Error
	return count, err
}
