package repository

import (
	"context"

	"gorm.io/gorm"

	"fleetdesk/backend/internal/model"
)

// MaintenanceLogRepository van service history
type MaintenanceLogRepository interface {
	Create(ctx context.Context, log *model.MaintenanceLog) error
	GetByID(ctx context.Context, id string) (*model.MaintenanceLog, error)
	ListByVan(ctx context.Context, vanID string) ([]model.MaintenanceLog, error)
	Delete(ctx context.Context, id, deletedBy string) error
}

type maintenanceLogRepo struct {
	db *gorm.DB
}

func NewMaintenanceLogRepo(db *gorm.DB) MaintenanceLogRepository {
	return &maintenanceLogRepo{db: db}
}

func (r *maintenanceLogRepo) Create(ctx context.Context, log *model.MaintenanceLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *maintenanceLogRepo) GetByID(ctx context.Context, id string) (*model.MaintenanceLog, error) {
	var log model.MaintenanceLog
	if err := r.db.WithContext(ctx).Where("maintenance_log_id = ?", id).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *maintenanceLogRepo) ListByVan(ctx context.Context, vanID string) ([]model.MaintenanceLog, error) {
	var logs []model.MaintenanceLog
	err := r.db.WithContext(ctx).
		Where("van_id = ?", vanID).
		Order("service_date DESC, created_at DESC").
		Find(&logs).Error
	return logs, err
}

func (r *maintenanceLogRepo) Delete(ctx context.Context, id, deletedBy string) error {
	return softDelete(ctx, r.db, &model.MaintenanceLog{}, "maintenance_log_id", id, deletedBy)
}
