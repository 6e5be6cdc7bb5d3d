package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// ── account errors ──

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrUserSelfRoleChange = fmt.Errorf("%w: cannot change your own role or status", pkgerrors.ErrForbidden)
)

// UserService account administration
type UserService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	List(ctx context.Context, caller Caller, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) Create(ctx context.Context, caller Caller, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.ErrForbidden
	}
	if !model.ValidRole(req.Role) {
		return nil, pkgerrors.Invalid("role", "unknown role")
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("load user failed", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    email,
		Role:     req.Role,
		IsActive: true,
	}
	if err := s.bindScope(ctx, user, req.StationID, req.DriverID); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.CreatedBy = &caller.UserID
	user.UpdatedBy = &caller.UserID

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("create user failed", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.User.GetByID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(created)
	return &resp, nil
}

// bindScope validates and sets the station/driver link a role requires.
// Driver accounts inherit their driver's station.
func (s *userService) bindScope(ctx context.Context, user *model.User, stationID, driverID string) error {
	user.StationID, user.DriverID = nil, nil

	switch user.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleDriver:
		if driverID == "" {
			return pkgerrors.Invalid("driver_id", "driver accounts must be linked to a driver")
		}
		driver, err := s.repo.Driver.GetByID(ctx, driverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Invalid("driver_id", "unknown driver")
			}
			return err
		}
		user.DriverID = &driver.DriverID
		user.StationID = &driver.StationID
		return nil
	default:
		if stationID == "" {
			return pkgerrors.Invalid("station_id", "managers must belong to a station")
		}
		if _, err := s.repo.Station.GetByID(ctx, stationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Invalid("station_id", "unknown station")
			}
			return err
		}
		user.StationID = &stationID
		return nil
	}
}

func (s *userService) List(ctx context.Context, caller Caller, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	stationID := req.StationID
	if !caller.IsAdmin() {
		var err error
		if stationID, err = resolveStation(caller, req.StationID); err != nil {
			return nil, 0, err
		}
	}

	users, total, err := s.repo.User.List(ctx, stationID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, total, nil
}

func (s *userService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.ErrForbidden
	}
	if id == caller.UserID && (req.Role != nil || req.IsActive != nil) {
		return nil, ErrUserSelfRoleChange
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Role != nil || req.StationID != nil {
		if req.Role != nil {
			if !model.ValidRole(*req.Role) {
				return nil, pkgerrors.Invalid("role", "unknown role")
			}
			user.Role = *req.Role
		}
		station, driver := deref(user.StationID), deref(user.DriverID)
		if req.StationID != nil {
			station = *req.StationID
		}
		if err := s.bindScope(ctx, user, station, driver); err != nil {
			return nil, err
		}
	}
	user.UpdatedBy = &caller.UserID

	if err := s.repo.User.Update(ctx, user); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update user failed", zap.String("user_id", id), zap.Error(err))
		}
		return nil, err
	}

	updated, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(updated)
	return &resp, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
