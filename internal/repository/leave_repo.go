package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fleetdesk/backend/internal/model"
)

// LeaveRepository driver leaves
type LeaveRepository interface {
	Create(ctx context.Context, leave *model.DriverLeave) error
	GetByID(ctx context.Context, id string) (*model.DriverLeave, error)
	Delete(ctx context.Context, id, deletedBy string) error
	// ListByStationAndDate leaves whose [start, end] contains date.
	ListByStationAndDate(ctx context.Context, stationID string, date time.Time) ([]model.DriverLeave, error)
	// ListByStationAndRange leaves overlapping [from, to].
	ListByStationAndRange(ctx context.Context, stationID string, from, to time.Time) ([]model.DriverLeave, error)
	// ListOverlapping a driver's leaves overlapping [from, to].
	ListOverlapping(ctx context.Context, driverID string, from, to time.Time) ([]model.DriverLeave, error)
}

type leaveRepo struct {
	db *gorm.DB
}

func NewLeaveRepo(db *gorm.DB) LeaveRepository {
	return &leaveRepo{db: db}
}

func (r *leaveRepo) Create(ctx context.Context, leave *model.DriverLeave) error {
	return r.db.WithContext(ctx).Omit("Driver").Create(leave).Error
}

func (r *leaveRepo) GetByID(ctx context.Context, id string) (*model.DriverLeave, error) {
	var leave model.DriverLeave
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Where("leave_id = ?", id).
		First(&leave).Error
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *leaveRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return softDelete(ctx, r.db, &model.DriverLeave{}, "leave_id", id, deletedBy)
}

func (r *leaveRepo) ListByStationAndDate(ctx context.Context, stationID string, date time.Time) ([]model.DriverLeave, error) {
	d := dateArg(date)
	var leaves []model.DriverLeave
	err := r.db.WithContext(ctx).
		Where("station_id = ? AND start_date <= ? AND end_date >= ?", stationID, d, d).
		Find(&leaves).Error
	return leaves, err
}

func (r *leaveRepo) ListByStationAndRange(ctx context.Context, stationID string, from, to time.Time) ([]model.DriverLeave, error) {
	var leaves []model.DriverLeave
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Where("station_id = ? AND start_date <= ? AND end_date >= ?", stationID, dateArg(to), dateArg(from)).
		Order("start_date ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *leaveRepo) ListOverlapping(ctx context.Context, driverID string, from, to time.Time) ([]model.DriverLeave, error) {
	var leaves []model.DriverLeave
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND start_date <= ? AND end_date >= ?", driverID, dateArg(to), dateArg(from)).
		Find(&leaves).Error
	return leaves, err
}
