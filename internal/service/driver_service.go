package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// ── driver errors ──

var (
	ErrDriverNotFound = pkgerrors.NotFound("driver")
	ErrDriverInactive = fmt.Errorf("%w: driver is inactive", pkgerrors.ErrForbidden)
)

// DriverService driver master data
type DriverService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateDriverRequest) (*dto.DriverResponse, error)
	Get(ctx context.Context, caller Caller, id string) (*dto.DriverResponse, error)
	List(ctx context.Context, caller Caller, req *dto.DriverListRequest) ([]dto.DriverResponse, int64, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateDriverRequest) (*dto.DriverResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type driverService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDriverService creates a DriverService.
func NewDriverService(repo *repository.Repository, logger *zap.Logger) DriverService {
	return &driverService{repo: repo, logger: logger}
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := parseDateField(field, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *driverService) Create(ctx context.Context, caller Caller, req *dto.CreateDriverRequest) (*dto.DriverResponse, error) {
	if !caller.IsReviewer() {
		return nil, pkgerrors.ErrForbidden
	}
	station, err := resolveStation(caller, req.StationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Station.GetByID(ctx, station); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Invalid("station_id", "unknown station")
		}
		return nil, err
	}

	expiry, err := parseOptionalDate("licence_expiry", req.LicenceExpiry)
	if err != nil {
		return nil, err
	}

	driver := &model.Driver{
		StationID:     station,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		PersonnelNo:   strings.TrimSpace(req.PersonnelNo),
		Phone:         req.Phone,
		Email:         normalizeEmail(req.Email),
		LicenceExpiry: expiry,
		IsActive:      true,
	}
	driver.CreatedBy = &caller.UserID
	driver.UpdatedBy = &caller.UserID

	if err := s.repo.Driver.Create(ctx, driver); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.Invalid("personnel_no", "personnel number already in use")
		}
		s.logger.Error("create driver failed", zap.Error(err))
		return nil, err
	}
	return toDriverResponse(driver), nil
}

func (s *driverService) Get(ctx context.Context, caller Caller, id string) (*dto.DriverResponse, error) {
	driver, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return toDriverResponse(driver), nil
}

func (s *driverService) load(ctx context.Context, caller Caller, id string) (*model.Driver, error) {
	driver, err := s.repo.Driver.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		s.logger.Error("load driver failed", zap.String("driver_id", id), zap.Error(err))
		return nil, err
	}
	if caller.Role == model.RoleDriver {
		if caller.DriverID != id {
			return nil, ErrDriverNotFound
		}
		return driver, nil
	}
	if !canAccessStation(caller, driver.StationID) {
		return nil, ErrOutsideStation
	}
	return driver, nil
}

func (s *driverService) List(ctx context.Context, caller Caller, req *dto.DriverListRequest) ([]dto.DriverResponse, int64, error) {
	station, err := resolveStation(caller, req.StationID)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.DriverFilter{
		StationID:  station,
		ActiveOnly: req.ActiveOnly,
		Search:     strings.TrimSpace(req.Search),
	}
	drivers, total, err := s.repo.Driver.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list drivers failed", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.DriverResponse, 0, len(drivers))
	for i := range drivers {
		out = append(out, *toDriverResponse(&drivers[i]))
	}
	return out, total, nil
}

func (s *driverService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateDriverRequest) (*dto.DriverResponse, error) {
	if !caller.IsReviewer() {
		return nil, pkgerrors.ErrForbidden
	}
	driver, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		driver.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		driver.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.PersonnelNo != nil {
		driver.PersonnelNo = strings.TrimSpace(*req.PersonnelNo)
	}
	if req.Phone != nil {
		driver.Phone = *req.Phone
	}
	if req.Email != nil {
		driver.Email = normalizeEmail(*req.Email)
	}
	if req.LicenceExpiry != nil {
		if driver.LicenceExpiry, err = parseOptionalDate("licence_expiry", *req.LicenceExpiry); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		driver.IsActive = *req.IsActive
	}
	driver.UpdatedBy = &caller.UserID

	if err := s.repo.Driver.Update(ctx, driver); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, pkgerrors.Invalid("personnel_no", "personnel number already in use")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			return nil, err
		}
		s.logger.Error("update driver failed", zap.String("driver_id", id), zap.Error(err))
		return nil, err
	}
	return toDriverResponse(driver), nil
}

func (s *driverService) Delete(ctx context.Context, caller Caller, id string) error {
	if !caller.IsReviewer() {
		return pkgerrors.ErrForbidden
	}
	if _, err := s.load(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Driver.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDriverNotFound
		}
		s.logger.Error("delete driver failed", zap.String("driver_id", id), zap.Error(err))
		return err
	}
	return nil
}

func toDriverResponse(d *model.Driver) *dto.DriverResponse {
	resp := &dto.DriverResponse{
		ID:          d.DriverID,
		StationID:   d.StationID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		PersonnelNo: d.PersonnelNo,
		Phone:       d.Phone,
		Email:       d.Email,
		IsActive:    d.IsActive,
	}
	if d.LicenceExpiry != nil {
		exp := formatDate(*d.LicenceExpiry)
		resp.LicenceExpiry = &exp
	}
	if d.Station != nil {
		resp.Station = &dto.StationBrief{ID: d.Station.StationID, Code: d.Station.Code, Name: d.Station.Name}
	}
	return resp
}
