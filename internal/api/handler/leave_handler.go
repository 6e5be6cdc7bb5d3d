package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/service"
	"fleetdesk/backend/pkg/response"
)

// LeaveHandler driver leave
type LeaveHandler struct {
	leaveSvc service.LeaveService
}

// NewLeaveHandler creates a LeaveHandler.
func NewLeaveHandler(leaveSvc service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc}
}

// ListLeaves
// GET /api/v1/leaves?station_id=&from=&to=
func (h *LeaveHandler) ListLeaves(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.LeaveListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	leaves, err := h.leaveSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"list": leaves})
}

// CreateLeave
// POST /api/v1/leaves
func (h *LeaveHandler) CreateLeave(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	leave, err := h.leaveSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, leave)
}

// DeleteLeave
// DELETE /api/v1/leaves/:id
func (h *LeaveHandler) DeleteLeave(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.leaveSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// Feed serves the station's leave as iCalendar.
// GET /api/v1/leaves/feed.ics?station_id=
func (h *LeaveHandler) Feed(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	body, err := h.leaveSvc.Feed(c.Request.Context(), caller, c.Query("station_id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="leave.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", body)
}
