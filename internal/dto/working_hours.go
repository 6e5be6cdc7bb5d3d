package dto

// SubmitWorkingHoursRequest raw shift form. Times are HH:MM (HH:MM:SS accepted),
// work_date is YYYY-MM-DD.
type SubmitWorkingHoursRequest struct {
	WorkDate       string `json:"work_date"       binding:"required"`
	TourNumber     string `json:"tour_number"     binding:"required"`
	VanID          string `json:"van_id"          binding:"omitempty,uuid"`
	KmStart        *int   `json:"km_start"        binding:"required"`
	KmEnd          *int   `json:"km_end"          binding:"required"`
	ScannerLogin   string `json:"scanner_login"   binding:"required"`
	DepotDeparture string `json:"depot_departure" binding:"required"`
	FirstDelivery  string `json:"first_delivery"  binding:"required"`
	LastDelivery   string `json:"last_delivery"   binding:"required"`
	DepotReturn    string `json:"depot_return"    binding:"required"`
}

// FieldEdit one reviewer correction. Value is in the submission format.
type FieldEdit struct {
	Field  string `json:"field"  binding:"required"`
	Value  string `json:"value"  binding:"required"`
	Reason string `json:"reason"`
}

// ApproveWorkingHoursRequest approve, optionally with corrections. Reason is
// used for edits that carry none of their own.
type ApproveWorkingHoursRequest struct {
	Edits  []FieldEdit `json:"edits" binding:"dive"`
	Reason string      `json:"reason"`
}

// RejectWorkingHoursRequest reject with a reason
type RejectWorkingHoursRequest struct {
	Reason string `json:"reason"`
}

// WorkingHoursResponse a record as shown on the review screen
type WorkingHoursResponse struct {
	ID              string                     `json:"id"`
	Driver          *DriverBrief               `json:"driver,omitempty"`
	DriverID        string                     `json:"driver_id"`
	StationID       string                     `json:"station_id"`
	Van             *VanBrief                  `json:"van,omitempty"`
	WorkDate        string                     `json:"work_date"`
	TourNumber      string                     `json:"tour_number"`
	KmStart         int                        `json:"km_start"`
	KmEnd           int                        `json:"km_end"`
	KmTotal         int                        `json:"km_total"`
	ScannerLogin    string                     `json:"scanner_login"`
	DepotDeparture  string                     `json:"depot_departure"`
	FirstDelivery   string                     `json:"first_delivery"`
	LastDelivery    string                     `json:"last_delivery"`
	DepotReturn     string                     `json:"depot_return"`
	BreakMinutes    int                        `json:"break_minutes"`
	TotalMinutes    int                        `json:"total_minutes"`
	TotalHours      string                     `json:"total_hours"` // h:mm
	Status          string                     `json:"status"`
	RejectionReason *string                    `json:"rejection_reason,omitempty"`
	ApprovedBy      *string                    `json:"approved_by,omitempty"`
	ApprovedAt      *string                    `json:"approved_at,omitempty"`
	CreatedAt       string                     `json:"created_at"`
	Edits           []WorkingHoursEditResponse `json:"edits,omitempty"`
}

// WorkingHoursEditResponse audit row
type WorkingHoursEditResponse struct {
	Field     string `json:"field"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
	Reason    string `json:"reason"`
	EditorID  string `json:"editor_id"`
	CreatedAt string `json:"created_at"`
}

// DailySummaryResponse dashboard counters for one station and day
type DailySummaryResponse struct {
	StationID string `json:"station_id"`
	Date      string `json:"date"`
	Drivers   int    `json:"drivers"`
	Submitted int    `json:"submitted"`
	Pending   int    `json:"pending"`
	Approved  int    `json:"approved"`
	Rejected  int    `json:"rejected"`
	Missing   int    `json:"missing"`
	OnLeave   int    `json:"on_leave"`
}

// CalendarDay one cell of the monthly review calendar. Missing is nil for
// days after today.
type CalendarDay struct {
	Date      string `json:"date"`
	Submitted int    `json:"submitted"`
	Pending   int    `json:"pending"`
	Approved  int    `json:"approved"`
	Rejected  int    `json:"rejected"`
	OnLeave   int    `json:"on_leave"`
	Missing   *int   `json:"missing,omitempty"`
}

// CalendarResponse monthly review calendar
type CalendarResponse struct {
	StationID string        `json:"station_id"`
	Month     string        `json:"month"` // YYYY-MM
	Days      []CalendarDay `json:"days"`
}

// WorkingHoursQuery station/date list query
type WorkingHoursQuery struct {
	Date      string `form:"date"       binding:"required"`
	StationID string `form:"station_id" binding:"omitempty,uuid"`
}

// MonthQuery month-scoped query
type MonthQuery struct {
	Month     string `form:"month"      binding:"required"` // YYYY-MM
	StationID string `form:"station_id" binding:"omitempty,uuid"`
}
