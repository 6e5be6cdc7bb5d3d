package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fleetdesk/backend/internal/model"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// WorkingHoursRepository working-hours records
type WorkingHoursRepository interface {
	// Create inserts a record. A second active record for the same driver
	// and date fails with gorm.ErrDuplicatedKey.
	Create(ctx context.Context, rec *model.WorkingHoursRecord) error
	GetByID(ctx context.Context, id string) (*model.WorkingHoursRecord, error)
	// Update writes every mutable column guarded by the version column.
	Update(ctx context.Context, rec *model.WorkingHoursRecord) error
	// ListByDriverAndDate every record, rejected ones included, oldest first.
	ListByDriverAndDate(ctx context.Context, driverID string, date time.Time) ([]model.WorkingHoursRecord, error)
	ListByStationAndDate(ctx context.Context, stationID string, date time.Time) ([]model.WorkingHoursRecord, error)
	ListByStationAndRange(ctx context.Context, stationID string, from, to time.Time) ([]model.WorkingHoursRecord, error)
	ListByDriverAndRange(ctx context.Context, driverID string, from, to time.Time) ([]model.WorkingHoursRecord, error)
}

type workingHoursRepo struct {
	db *gorm.DB
}

func NewWorkingHoursRepo(db *gorm.DB) WorkingHoursRepository {
	return &workingHoursRepo{db: db}
}

func (r *workingHoursRepo) Create(ctx context.Context, rec *model.WorkingHoursRecord) error {
	return r.db.WithContext(ctx).Omit("Driver", "Van", "Edits").Create(rec).Error
}

func (r *workingHoursRepo) GetByID(ctx context.Context, id string) (*model.WorkingHoursRecord, error) {
	var rec model.WorkingHoursRecord
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Van").
		Preload("Edits", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("working_hours_id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *workingHoursRepo) Update(ctx context.Context, rec *model.WorkingHoursRecord) error {
	oldVersion := rec.Version
	res := r.db.WithContext(ctx).
		Model(&model.WorkingHoursRecord{}).
		Where("working_hours_id = ? AND version = ?", rec.WorkingHoursID, oldVersion).
		Updates(map[string]interface{}{
			"van_id":           rec.VanID,
			"tour_number":      rec.TourNumber,
			"km_start":         rec.KmStart,
			"km_end":           rec.KmEnd,
			"km_total":         rec.KmTotal,
			"scanner_login":    rec.ScannerLogin,
			"depot_departure":  rec.DepotDeparture,
			"first_delivery":   rec.FirstDelivery,
			"last_delivery":    rec.LastDelivery,
			"depot_return":     rec.DepotReturn,
			"break_minutes":    rec.BreakMinutes,
			"total_minutes":    rec.TotalMinutes,
			"status":           rec.Status,
			"rejection_reason": rec.RejectionReason,
			"approved_by":      rec.ApprovedBy,
			"approved_at":      rec.ApprovedAt,
			"decided_by":       rec.DecidedBy,
			"decided_at":       rec.DecidedAt,
			"updated_by":       rec.UpdatedBy,
			"updated_at":       gorm.Expr("NOW()"),
			"version":          oldVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	rec.Version = oldVersion + 1
	return nil
}

func (r *workingHoursRepo) ListByDriverAndDate(ctx context.Context, driverID string, date time.Time) ([]model.WorkingHoursRecord, error) {
	var recs []model.WorkingHoursRecord
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND work_date = ?", driverID, dateArg(date)).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

func (r *workingHoursRepo) ListByStationAndDate(ctx context.Context, stationID string, date time.Time) ([]model.WorkingHoursRecord, error) {
	var recs []model.WorkingHoursRecord
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Van").
		Where("station_id = ? AND work_date = ?", stationID, dateArg(date)).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

func (r *workingHoursRepo) ListByStationAndRange(ctx context.Context, stationID string, from, to time.Time) ([]model.WorkingHoursRecord, error) {
	var recs []model.WorkingHoursRecord
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Preload("Van").
		Where("station_id = ? AND work_date BETWEEN ? AND ?", stationID, dateArg(from), dateArg(to)).
		Order("work_date ASC, created_at ASC").
		Find(&recs).Error
	return recs, err
}

func (r *workingHoursRepo) ListByDriverAndRange(ctx context.Context, driverID string, from, to time.Time) ([]model.WorkingHoursRecord, error) {
	var recs []model.WorkingHoursRecord
	err := r.db.WithContext(ctx).
		Preload("Van").
		Where("driver_id = ? AND work_date BETWEEN ? AND ?", driverID, dateArg(from), dateArg(to)).
		Order("work_date ASC, created_at ASC").
		Find(&recs).Error
	return recs, err
}

// ── WorkingHoursEdit ──

// WorkingHoursEditRepository append-only audit trail
type WorkingHoursEditRepository interface {
	Create(ctx context.Context, edit *model.WorkingHoursEdit) error
	ListByRecord(ctx context.Context, recordID string) ([]model.WorkingHoursEdit, error)
}

type workingHoursEditRepo struct {
	db *gorm.DB
}

func NewWorkingHoursEditRepo(db *gorm.DB) WorkingHoursEditRepository {
	return &workingHoursEditRepo{db: db}
}

func (r *workingHoursEditRepo) Create(ctx context.Context, edit *model.WorkingHoursEdit) error {
	return r.db.WithContext(ctx).Create(edit).Error
}

func (r *workingHoursEditRepo) ListByRecord(ctx context.Context, recordID string) ([]model.WorkingHoursEdit, error) {
	var edits []model.WorkingHoursEdit
	err := r.db.WithContext(ctx).
		Where("working_hours_id = ?", recordID).
		Order("created_at ASC").
		Find(&edits).Error
	return edits, err
}
