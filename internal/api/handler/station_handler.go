package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/service"
	"fleetdesk/backend/pkg/response"
)

// StationHandler depots
type StationHandler struct {
	stationSvc service.StationService
}

// NewStationHandler creates a StationHandler.
func NewStationHandler(stationSvc service.StationService) *StationHandler {
	return &StationHandler{stationSvc: stationSvc}
}

// ListStations
// GET /api/v1/stations
func (h *StationHandler) ListStations(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	stations, err := h.stationSvc.List(c.Request.Context(), caller)
	if err != nil {
		h.handleStationError(c, err)
		return
	}
	response.OK(c, gin.H{"list": stations})
}

// GetStation
// GET /api/v1/stations/:id
func (h *StationHandler) GetStation(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	station, err := h.stationSvc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleStationError(c, err)
		return
	}
	response.OK(c, station)
}

// CreateStation
// POST /api/v1/stations
func (h *StationHandler) CreateStation(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	station, err := h.stationSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleStationError(c, err)
		return
	}
	response.Created(c, station)
}

// UpdateStation
// PUT /api/v1/stations/:id
func (h *StationHandler) UpdateStation(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	station, err := h.stationSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleStationError(c, err)
		return
	}
	response.OK(c, station)
}

// DeleteStation
// DELETE /api/v1/stations/:id
func (h *StationHandler) DeleteStation(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.stationSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handleStationError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *StationHandler) handleStationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStationCodeExists):
		response.Conflict(c, response.CodeConflict, "station code already exists")
	default:
		writeServiceError(c, err)
	}
}
