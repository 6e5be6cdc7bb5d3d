package service

import (
	"time"

	"go.uber.org/zap"

	"fleetdesk/backend/config"
	"fleetdesk/backend/internal/repository"
	"fleetdesk/backend/pkg/jwt"
)

// Deps optional infrastructure. Any nil field disables its feature.
type Deps struct {
	Cache     Cache
	Blacklist TokenBlacklist
	Events    EventPublisher
	Store     ObjectStore
}

// Service aggregates every service for the handler layer.
type Service struct {
	Auth         AuthService
	User         UserService
	Station      StationService
	Driver       DriverService
	Van          VanService
	Maintenance  MaintenanceService
	Leave        LeaveService
	WorkingHours WorkingHoursService
	Calendar     CalendarService
	Export       ExportService
}

// NewService wires the services.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	loc := cfg.App.Location()
	calendar := NewCalendarService(repo, deps.Cache, cfg.App.CalendarTTL, loc, logger)
	whOpts := WorkingHoursOptions{
		Location:                    loc,
		AllowResubmitAfterRejection: cfg.Feature.AllowResubmitAfterRejection,
		Now:                         time.Now,
	}

	return &Service{
		Auth:         NewAuthService(repo, jwtMgr, deps.Blacklist, logger),
		User:         NewUserService(repo, logger),
		Station:      NewStationService(repo, logger),
		Driver:       NewDriverService(repo, logger),
		Van:          NewVanService(repo, logger),
		Maintenance:  NewMaintenanceService(repo, deps.Store, logger),
		Leave:        NewLeaveService(repo, calendar, loc, logger),
		WorkingHours: NewWorkingHoursService(repo, calendar, deps.Events, whOpts, logger),
		Calendar:     calendar,
		Export:       NewExportService(repo, logger),
	}
}
