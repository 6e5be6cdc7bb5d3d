package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

var ErrVanNotFound = pkgerrors.NotFound("van")

// VanService vehicle master data
type VanService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateVanRequest) (*dto.VanResponse, error)
	Get(ctx context.Context, caller Caller, id string) (*dto.VanResponse, error)
	List(ctx context.Context, caller Caller, req *dto.VanListRequest) ([]dto.VanResponse, int64, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateVanRequest) (*dto.VanResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type vanService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewVanService creates a VanService.
func NewVanService(repo *repository.Repository, logger *zap.Logger) VanService {
	return &vanService{repo: repo, logger: logger}
}

func (s *vanService) Create(ctx context.Context, caller Caller, req *dto.CreateVanRequest) (*dto.VanResponse, error) {
	if !caller.IsReviewer() {
		return nil, pkgerrors.ErrForbidden
	}
	station, err := resolveStation(caller, req.StationID)
	if err != nil {
		return nil, err
	}

	van := &model.Van{
		StationID:   station,
		PlateNumber: normalizePlate(req.PlateNumber),
		Model:       strings.TrimSpace(req.Model),
		VIN:         strings.ToUpper(strings.TrimSpace(req.VIN)),
		Mileage:     req.Mileage,
		Status:      model.VanStatusActive,
	}
	van.CreatedBy = &caller.UserID
	van.UpdatedBy = &caller.UserID

	if err := s.repo.Van.Create(ctx, van); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.Invalid("plate_number", "plate number already registered")
		}
		s.logger.Error("create van failed", zap.Error(err))
		return nil, err
	}
	return toVanResponse(van), nil
}

func normalizePlate(p string) string {
	return strings.ToUpper(strings.Join(strings.Fields(p), " "))
}

// loadVan resolves a van the caller's station may see.
func loadVan(ctx context.Context, repo *repository.Repository, caller Caller, id string) (*model.Van, error) {
	van, err := repo.Van.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVanNotFound
		}
		return nil, err
	}
	if !canAccessStation(caller, van.StationID) {
		return nil, ErrOutsideStation
	}
	return van, nil
}

func (s *vanService) Get(ctx context.Context, caller Caller, id string) (*dto.VanResponse, error) {
	van, err := loadVan(ctx, s.repo, caller, id)
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("load van failed", zap.String("van_id", id), zap.Error(err))
		}
		return nil, err
	}
	return toVanResponse(van), nil
}

func (s *vanService) List(ctx context.Context, caller Caller, req *dto.VanListRequest) ([]dto.VanResponse, int64, error) {
	station, err := resolveStation(caller, req.StationID)
	if err != nil {
		return nil, 0, err
	}
	vans, total, err := s.repo.Van.List(ctx, station, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list vans failed", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.VanResponse, 0, len(vans))
	for i := range vans {
		out = append(out, *toVanResponse(&vans[i]))
	}
	return out, total, nil
}

func (s *vanService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateVanRequest) (*dto.VanResponse, error) {
	if !caller.IsReviewer() {
		return nil, pkgerrors.ErrForbidden
	}
	van, err := loadVan(ctx, s.repo, caller, id)
	if err != nil {
		return nil, err
	}

	if req.PlateNumber != nil {
		van.PlateNumber = normalizePlate(*req.PlateNumber)
	}
	if req.Model != nil {
		van.Model = strings.TrimSpace(*req.Model)
	}
	if req.VIN != nil {
		van.VIN = strings.ToUpper(strings.TrimSpace(*req.VIN))
	}
	if req.Mileage != nil {
		if *req.Mileage < van.Mileage {
			return nil, pkgerrors.Invalid("mileage", "odometer cannot go backwards")
		}
		van.Mileage = *req.Mileage
	}
	if req.Status != nil {
		if !model.ValidVanStatus(*req.Status) {
			return nil, pkgerrors.Invalid("status", "unknown van status")
		}
		van.Status = *req.Status
	}
	van.UpdatedBy = &caller.UserID

	if err := s.repo.Van.Update(ctx, van); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, pkgerrors.Invalid("plate_number", "plate number already registered")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, err
		}
		s.logger.Error("update van failed", zap.String("van_id", id), zap.Error(err))
		return nil, err
	}
	return toVanResponse(van), nil
}

func (s *vanService) Delete(ctx context.Context, caller Caller, id string) error {
	if !caller.IsReviewer() {
		return pkgerrors.ErrForbidden
	}
	if _, err := loadVan(ctx, s.repo, caller, id); err != nil {
		return err
	}
	if err := s.repo.Van.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVanNotFound
		}
		s.logger.Error("delete van failed", zap.String("van_id", id), zap.Error(err))
		return err
	}
	return nil
}

func toVanResponse(v *model.Van) *dto.VanResponse {
	return &dto.VanResponse{
		ID:          v.VanID,
		StationID:   v.StationID,
		PlateNumber: v.PlateNumber,
		Model:       v.Model,
		VIN:         v.VIN,
		Mileage:     v.Mileage,
		Status:      v.Status,
	}
}
