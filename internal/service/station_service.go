package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// ── station errors ──

var (
	ErrStationNotFound   = pkgerrors.NotFound("station")
	ErrStationCodeExists = errors.New("station code already in use")
	ErrStationHasDrivers = fmt.Errorf("%w: station still has drivers", pkgerrors.ErrInvalidState)
)

// StationService depot master data
type StationService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateStationRequest) (*dto.StationResponse, error)
	Get(ctx context.Context, caller Caller, id string) (*dto.StationResponse, error)
	List(ctx context.Context, caller Caller) ([]dto.StationResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateStationRequest) (*dto.StationResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type stationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStationService creates a StationService.
func NewStationService(repo *repository.Repository, logger *zap.Logger) StationService {
	return &stationService{repo: repo, logger: logger}
}

func (s *stationService) Create(ctx context.Context, caller Caller, req *dto.CreateStationRequest) (*dto.StationResponse, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.ErrForbidden
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureCodeFree(ctx, code, ""); err != nil {
		return nil, err
	}

	station := &model.Station{
		Code:     code,
		Name:     strings.TrimSpace(req.Name),
		Address:  req.Address,
		IsActive: true,
	}
	station.CreatedBy = &caller.UserID
	station.UpdatedBy = &caller.UserID

	if err := s.repo.Station.Create(ctx, station); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStationCodeExists
		}
		s.logger.Error("create station failed", zap.Error(err))
		return nil, err
	}
	return toStationResponse(station, 0), nil
}

func (s *stationService) ensureCodeFree(ctx context.Context, code, selfID string) error {
	existing, err := s.repo.Station.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("load station failed", zap.Error(err))
		return err
	}
	if existing.StationID != selfID {
		return ErrStationCodeExists
	}
	return nil
}

func (s *stationService) Get(ctx context.Context, caller Caller, id string) (*dto.StationResponse, error) {
	if !canAccessStation(caller, id) {
		return nil, ErrOutsideStation
	}
	station, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Station.CountDrivers(ctx, id)
	if err != nil {
		s.logger.Warn("count drivers failed, reporting 0", zap.String("station_id", id), zap.Error(err))
	}
	return toStationResponse(station, count), nil
}

func (s *stationService) List(ctx context.Context, caller Caller) ([]dto.StationResponse, error) {
	stations, err := s.repo.Station.List(ctx, !caller.IsAdmin())
	if err != nil {
		s.logger.Error("list stations failed", zap.Error(err))
		return nil, err
	}

	out := make([]dto.StationResponse, 0, len(stations))
	for i := range stations {
		if !canAccessStation(caller, stations[i].StationID) {
			continue
		}
		out = append(out, *toStationResponse(&stations[i], 0))
	}
	return out, nil
}

func (s *stationService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateStationRequest) (*dto.StationResponse, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.ErrForbidden
	}
	station, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if err := s.ensureCodeFree(ctx, code, id); err != nil {
			return nil, err
		}
		station.Code = code
	}
	if req.Name != nil {
		station.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		station.Address = *req.Address
	}
	if req.IsActive != nil {
		station.IsActive = *req.IsActive
	}
	station.UpdatedBy = &caller.UserID

	if err := s.repo.Station.Update(ctx, station); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update station failed", zap.String("station_id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.Get(ctx, caller, id)
}

func (s *stationService) Delete(ctx context.Context, caller Caller, id string) error {
	if !caller.IsAdmin() {
		return pkgerrors.ErrForbidden
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Station.CountDrivers(ctx, id)
	if err != nil {
		s.logger.Error("count drivers failed", zap.String("station_id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrStationHasDrivers
	}

	if err := s.repo.Station.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStationNotFound
		}
		s.logger.Error("delete station failed", zap.String("station_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *stationService) load(ctx context.Context, id string) (*model.Station, error) {
	station, err := s.repo.Station.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		s.logger.Error("load station failed", zap.String("station_id", id), zap.Error(err))
		return nil, err
	}
	return station, nil
}

func toStationResponse(st *model.Station, drivers int64) *dto.StationResponse {
	return &dto.StationResponse{
		ID:          st.StationID,
		Code:        st.Code,
		Name:        st.Name,
		Address:     st.Address,
		IsActive:    st.IsActive,
		DriverCount: drivers,
	}
}
