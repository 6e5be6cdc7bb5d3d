package handler

import (
	"github.com/gin-gonic/gin"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/service"
	"fleetdesk/backend/pkg/response"
)

// WorkingHoursHandler submission, review and coverage endpoints
type WorkingHoursHandler struct {
	whSvc       service.WorkingHoursService
	calendarSvc service.CalendarService
}

// NewWorkingHoursHandler creates a WorkingHoursHandler.
func NewWorkingHoursHandler(whSvc service.WorkingHoursService, calendarSvc service.CalendarService) *WorkingHoursHandler {
	return &WorkingHoursHandler{whSvc: whSvc, calendarSvc: calendarSvc}
}

// Submit a driver's shift
// POST /api/v1/working-hours
func (h *WorkingHoursHandler) Submit(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.SubmitWorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rec, err := h.whSvc.Submit(c.Request.Context(), caller, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Created(c, rec)
}

// ListMine
// GET /api/v1/working-hours/mine?month=YYYY-MM
func (h *WorkingHoursHandler) ListMine(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	recs, err := h.whSvc.ListMine(c.Request.Context(), caller, q.Month)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"list": recs})
}

// ListByDate
// GET /api/v1/working-hours?date=&station_id=
func (h *WorkingHoursHandler) ListByDate(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var q dto.WorkingHoursQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	recs, err := h.whSvc.ListByDate(c.Request.Context(), caller, q.StationID, q.Date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"list": recs})
}

// Get
// GET /api/v1/working-hours/:id
func (h *WorkingHoursHandler) Get(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	rec, err := h.whSvc.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, rec)
}

// ListEdits
// GET /api/v1/working-hours/:id/edits
func (h *WorkingHoursHandler) ListEdits(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	edits, err := h.whSvc.ListEdits(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"list": edits})
}

// Approve, optionally with field corrections. An empty body approves as is.
// POST /api/v1/working-hours/:id/approve
func (h *WorkingHoursHandler) Approve(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.ApproveWorkingHoursRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}

	rec, err := h.whSvc.Approve(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, rec)
}

// Reject
// POST /api/v1/working-hours/:id/reject
func (h *WorkingHoursHandler) Reject(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var req dto.RejectWorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	rec, err := h.whSvc.Reject(c.Request.Context(), caller, c.Param("id"), req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, rec)
}

// Missing lists active drivers without a submission.
// GET /api/v1/working-hours/missing?date=&station_id=
func (h *WorkingHoursHandler) Missing(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var q dto.WorkingHoursQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	drivers, err := h.whSvc.FindMissingSubmissions(c.Request.Context(), caller, q.StationID, q.Date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, gin.H{"list": drivers})
}

// Summary
// GET /api/v1/working-hours/summary?date=&station_id=
func (h *WorkingHoursHandler) Summary(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var q dto.WorkingHoursQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	sum, err := h.whSvc.DailySummary(c.Request.Context(), caller, q.StationID, q.Date)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, sum)
}

// Calendar
// GET /api/v1/working-hours/calendar?month=&station_id=
func (h *WorkingHoursHandler) Calendar(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	var q dto.MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	cal, err := h.calendarSvc.Month(c.Request.Context(), caller, q.StationID, q.Month)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.OK(c, cal)
}
