package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/service"
	"fleetdesk/backend/pkg/response"
)

// attachmentField multipart part carrying the maintenance file
const attachmentField = "attachment"

// MaintenanceHandler van maintenance logs and their attachments
type MaintenanceHandler struct {
	maintenanceSvc service.MaintenanceService
}

// NewMaintenanceHandler creates a MaintenanceHandler.
func NewMaintenanceHandler(maintenanceSvc service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceSvc: maintenanceSvc}
}

// ListLogs
// GET /api/v1/vans/:id/maintenance
func (h *MaintenanceHandler) ListLogs(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	logs, err := h.maintenanceSvc.ListByVan(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"list": logs})
}

// CreateLog accepts multipart/form-data with an optional "attachment" file.
// POST /api/v1/vans/:id/maintenance
func (h *MaintenanceHandler) CreateLog(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateMaintenanceLogRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}

	var file *service.Attachment
	fh, err := c.FormFile(attachmentField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		bindFailed(c, err)
		return
	default:
		body, err := fh.Open()
		if err != nil {
			bindFailed(c, err)
			return
		}
		defer body.Close()
		file = &service.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        body,
		}
	}

	entry, err := h.maintenanceSvc.Create(c.Request.Context(), caller, c.Param("id"), &req, file)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, entry)
}

// DeleteLog
// DELETE /api/v1/maintenance/:id
func (h *MaintenanceHandler) DeleteLog(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.maintenanceSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// GetAttachment returns a short-lived download link.
// GET /api/v1/maintenance/:id/attachment
func (h *MaintenanceHandler) GetAttachment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	link, err := h.maintenanceSvc.AttachmentURL(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, link)
}
