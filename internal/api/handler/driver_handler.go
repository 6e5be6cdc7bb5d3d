package handler

import (
	"github.com/gin-gonic/gin"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/service"
	"fleetdesk/backend/pkg/response"
)

// DriverHandler driver master data
type DriverHandler struct {
	driverSvc service.DriverService
}

// NewDriverHandler creates a DriverHandler.
func NewDriverHandler(driverSvc service.DriverService) *DriverHandler {
	return &DriverHandler{driverSvc: driverSvc}
}

// ListDrivers
// GET /api/v1/drivers
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.DriverListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	drivers, total, err := h.driverSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OKPage(c, drivers, total, req.GetPage(), req.GetPageSize())
}

// GetDriver
// GET /api/v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	driver, err := h.driverSvc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, driver)
}

// CreateDriver
// POST /api/v1/drivers
func (h *DriverHandler) CreateDriver(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	driver, err := h.driverSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, driver)
}

// UpdateDriver
// PUT /api/v1/drivers/:id
func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	driver, err := h.driverSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, driver)
}

// DeleteDriver
// DELETE /api/v1/drivers/:id
func (h *DriverHandler) DeleteDriver(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.driverSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, nil)
}
