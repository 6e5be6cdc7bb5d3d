package handler

import "fleetdesk/backend/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Station      *StationHandler
	Driver       *DriverHandler
	Van          *VanHandler
	Maintenance  *MaintenanceHandler
	Leave        *LeaveHandler
	WorkingHours *WorkingHoursHandler
	Export       *ExportHandler
}

// NewHandler wires handlers to their services.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Station:      NewStationHandler(svc.Station),
		Driver:       NewDriverHandler(svc.Driver),
		Van:          NewVanHandler(svc.Van),
		Maintenance:  NewMaintenanceHandler(svc.Maintenance),
		Leave:        NewLeaveHandler(svc.Leave),
		WorkingHours: NewWorkingHoursHandler(svc.WorkingHours, svc.Calendar),
		Export:       NewExportHandler(svc.Export),
	}
}
