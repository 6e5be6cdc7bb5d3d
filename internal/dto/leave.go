package dto

// CreateLeaveRequest record a leave for a driver
type CreateLeaveRequest struct {
	DriverID  string `json:"driver_id"  binding:"required,uuid"`
	LeaveType string `json:"leave_type" binding:"required,oneof=paid sick"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date"   binding:"required"`
	Reason    string `json:"reason"     binding:"max=500"`
}

// LeaveListRequest leaves overlapping a window, defaults to the current month
type LeaveListRequest struct {
	StationID string `form:"station_id" binding:"omitempty,uuid"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// LeaveResponse leave detail
type LeaveResponse struct {
	ID        string       `json:"id"`
	Driver    *DriverBrief `json:"driver,omitempty"`
	DriverID  string       `json:"driver_id"`
	StationID string       `json:"station_id"`
	LeaveType string       `json:"leave_type"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Reason    string       `json:"reason"`
	CreatedAt string       `json:"created_at"`
}
