package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// MaxAttachmentBytes upper bound of one maintenance attachment.
const MaxAttachmentBytes = 10 << 20

var (
	ErrMaintenanceNotFound = pkgerrors.NotFound("maintenance log")
	ErrNoAttachment        = pkgerrors.NotFound("attachment")
	ErrStorageDisabled     = pkgerrors.Invalid("attachment", "attachments are not enabled on this server")
	ErrAttachmentTooLarge  = pkgerrors.Invalid("attachment", "attachment exceeds 10 MB")
)

// ObjectStore blob storage for attachments. *storage.Client satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key, filename string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Attachment an uploaded file
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MaintenanceService workshop visits of vans
type MaintenanceService interface {
	Create(ctx context.Context, caller Caller, vanID string, req *dto.CreateMaintenanceLogRequest, file *Attachment) (*dto.MaintenanceLogResponse, error)
	ListByVan(ctx context.Context, caller Caller, vanID string) ([]dto.MaintenanceLogResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
	AttachmentURL(ctx context.Context, caller Caller, id string) (*dto.AttachmentURLResponse, error)
}

type maintenanceService struct {
	repo   *repository.Repository
	store  ObjectStore
	logger *zap.Logger
}

// NewMaintenanceService store may be nil when object storage is not
// configured; logs without attachments keep working.
func NewMaintenanceService(repo *repository.Repository, store ObjectStore, logger *zap.Logger) MaintenanceService {
	return &maintenanceService{repo: repo, store: store, logger: logger}
}

func attachmentKey(vanID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("maintenance", vanID, uuid.NewString()+ext)
}

func (s *maintenanceService) Create(ctx context.Context, caller Caller, vanID string, req *dto.CreateMaintenanceLogRequest, file *Attachment) (*dto.MaintenanceLogResponse, error) {
	if !caller.IsReviewer() {
		return nil, pkgerrors.ErrForbidden
	}
	van, err := loadVan(ctx, s.repo, caller, vanID)
	if err != nil {
		return nil, err
	}

	serviceDate, err := parseDateField("service_date", req.ServiceDate)
	if err != nil {
		return nil, err
	}
	if !model.ValidMaintenanceKind(req.Kind) {
		return nil, pkgerrors.Invalid("kind", "unknown maintenance kind")
	}
	if req.Mileage < 0 {
		return nil, pkgerrors.Invalid("mileage", "must not be negative")
	}

	entry := &model.MaintenanceLog{
		VanID:       van.VanID,
		StationID:   van.StationID,
		ServiceDate: serviceDate,
		Mileage:     req.Mileage,
		Kind:        req.Kind,
		Description: strings.TrimSpace(req.Description),
		CostCents:   req.CostCents,
	}
	entry.CreatedBy = &caller.UserID
	entry.UpdatedBy = &caller.UserID

	if file != nil {
		if s.store == nil {
			return nil, ErrStorageDisabled
		}
		if file.Size > MaxAttachmentBytes {
			return nil, ErrAttachmentTooLarge
		}
		key := attachmentKey(van.VanID, file.Filename)
		if err := s.store.Put(ctx, key, file.Body, file.Size, file.ContentType); err != nil {
			s.logger.Error("upload attachment failed", zap.String("van_id", van.VanID), zap.Error(err))
			return nil, err
		}
		name := filepath.Base(file.Filename)
		entry.AttachmentKey, entry.AttachmentName = &key, &name
	}

	if err := s.repo.Maintenance.Create(ctx, entry); err != nil {
		s.logger.Error("create maintenance log failed", zap.String("van_id", van.VanID), zap.Error(err))
		if entry.AttachmentKey != nil {
			s.removeObject(ctx, *entry.AttachmentKey)
		}
		return nil, err
	}

	if err := s.repo.Van.RaiseMileage(ctx, van.VanID, req.Mileage); err != nil {
		s.logger.Warn("raise van mileage failed", zap.String("van_id", van.VanID), zap.Error(err))
	}
	return toMaintenanceResponse(entry), nil
}

func (s *maintenanceService) ListByVan(ctx context.Context, caller Caller, vanID string) ([]dto.MaintenanceLogResponse, error) {
	if _, err := loadVan(ctx, s.repo, caller, vanID); err != nil {
		return nil, err
	}
	logs, err := s.repo.Maintenance.ListByVan(ctx, vanID)
	if err != nil {
		s.logger.Error("list maintenance logs failed", zap.String("van_id", vanID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.MaintenanceLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, *toMaintenanceResponse(&logs[i]))
	}
	return out, nil
}

func (s *maintenanceService) load(ctx context.Context, caller Caller, id string) (*model.MaintenanceLog, error) {
	entry, err := s.repo.Maintenance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaintenanceNotFound
		}
		s.logger.Error("load maintenance log failed", zap.String("maintenance_log_id", id), zap.Error(err))
		return nil, err
	}
	if !canAccessStation(caller, entry.StationID) {
		return nil, ErrOutsideStation
	}
	return entry, nil
}

func (s *maintenanceService) Delete(ctx context.Context, caller Caller, id string) error {
	if !caller.IsReviewer() {
		return pkgerrors.ErrForbidden
	}
	entry, err := s.load(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.repo.Maintenance.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaintenanceNotFound
		}
		s.logger.Error("delete maintenance log failed", zap.String("maintenance_log_id", id), zap.Error(err))
		return err
	}
	if entry.AttachmentKey != nil {
		s.removeObject(ctx, *entry.AttachmentKey)
	}
	return nil
}

func (s *maintenanceService) AttachmentURL(ctx context.Context, caller Caller, id string) (*dto.AttachmentURLResponse, error) {
	entry, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if entry.AttachmentKey == nil {
		return nil, ErrNoAttachment
	}
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	name := ""
	if entry.AttachmentName != nil {
		name = *entry.AttachmentName
	}
	u, err := s.store.PresignedURL(ctx, *entry.AttachmentKey, name)
	if err != nil {
		s.logger.Error("presign attachment failed", zap.String("maintenance_log_id", id), zap.Error(err))
		return nil, fmt.Errorf("attachment link: %w", err)
	}
	return &dto.AttachmentURLResponse{URL: u}, nil
}

func (s *maintenanceService) removeObject(ctx context.Context, key string) {
	if s.store == nil {
		return
	}
	if err := s.store.Remove(ctx, key); err != nil {
		s.logger.Warn("remove attachment failed", zap.String("key", key), zap.Error(err))
	}
}

func toMaintenanceResponse(m *model.MaintenanceLog) *dto.MaintenanceLogResponse {
	return &dto.MaintenanceLogResponse{
		ID:             m.MaintenanceLogID,
		VanID:          m.VanID,
		ServiceDate:    formatDate(m.ServiceDate),
		Mileage:        m.Mileage,
		Kind:           m.Kind,
		Description:    m.Description,
		CostCents:      m.CostCents,
		AttachmentName: m.AttachmentName,
		CreatedAt:      formatTimestamp(m.CreatedAt),
	}
}
