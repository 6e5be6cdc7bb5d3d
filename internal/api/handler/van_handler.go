package handler

import (
	"github.com/gin-gonic/gin"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/service"
	"fleetdesk/backend/pkg/response"
)

// VanHandler vehicles
type VanHandler struct {
	vanSvc service.VanService
}

// NewVanHandler creates a VanHandler.
func NewVanHandler(vanSvc service.VanService) *VanHandler {
	return &VanHandler{vanSvc: vanSvc}
}

// ListVans
// GET /api/v1/vans
func (h *VanHandler) ListVans(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.VanListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	vans, total, err := h.vanSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OKPage(c, vans, total, req.GetPage(), req.GetPageSize())
}

// GetVan
// GET /api/v1/vans/:id
func (h *VanHandler) GetVan(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	van, err := h.vanSvc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, van)
}

// CreateVan
// POST /api/v1/vans
func (h *VanHandler) CreateVan(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateVanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	van, err := h.vanSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, van)
}

// UpdateVan
// PUT /api/v1/vans/:id
func (h *VanHandler) UpdateVan(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateVanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	van, err := h.vanSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, van)
}

// DeleteVan
// DELETE /api/v1/vans/:id
func (h *VanHandler) DeleteVan(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.vanSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, nil)
}
