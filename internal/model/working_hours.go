package model

import "time"

// Working-hours record states
const (
	WorkingHoursPending  = "pending"
	WorkingHoursApproved = "approved"
	WorkingHoursRejected = "rejected"
)

// WorkingHoursRecord one driver's reported shift for one date (table working_hours)
//
// At most one non-rejected record exists per (driver, work_date); a partial
// unique index enforces it.
type WorkingHoursRecord struct {
	WorkingHoursID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"working_hours_id"`
	DriverID       string    `gorm:"type:uuid;not null"                             json:"driver_id"`
	StationID      string    `gorm:"type:uuid;not null"                             json:"station_id"`
	VanID          *string   `gorm:"type:uuid"                                      json:"van_id,omitempty"`
	WorkDate       time.Time `gorm:"type:date;not null"                             json:"work_date"`
	TourNumber     string    `gorm:"type:varchar(7);not null"                       json:"tour_number"`

	KmStart int `gorm:"not null" json:"km_start"`
	KmEnd   int `gorm:"not null" json:"km_end"`
	KmTotal int `gorm:"not null" json:"km_total"` // derived

	ScannerLogin   ClockTime `gorm:"type:time;not null" json:"scanner_login"`
	DepotDeparture ClockTime `gorm:"type:time;not null" json:"depot_departure"`
	FirstDelivery  ClockTime `gorm:"type:time;not null" json:"first_delivery"`
	LastDelivery   ClockTime `gorm:"type:time;not null" json:"last_delivery"`
	DepotReturn    ClockTime `gorm:"type:time;not null" json:"depot_return"`
	BreakMinutes   int       `gorm:"not null"           json:"break_minutes"` // derived
	TotalMinutes   int       `gorm:"not null"           json:"total_minutes"` // derived

	Status          string     `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	RejectionReason *string    `gorm:"type:text"                                  json:"rejection_reason,omitempty"`
	ApprovedBy      *string    `gorm:"type:uuid"                                  json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	DecidedBy       *string    `gorm:"type:uuid"                                  json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`

	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	Driver *Driver             `gorm:"foreignKey:DriverID;references:DriverID" json:"driver,omitempty"`
	Van    *Van                `gorm:"foreignKey:VanID;references:VanID"       json:"van,omitempty"`
	Edits  []*WorkingHoursEdit `gorm:"foreignKey:WorkingHoursID"               json:"edits,omitempty"`
}

func (WorkingHoursRecord) TableName() string { return "working_hours" }

// IsPending only pending records can be decided.
func (r *WorkingHoursRecord) IsPending() bool { return r.Status == WorkingHoursPending }

// WorkingHoursEdit one field changed by a reviewer before approval.
// Append-only (table working_hours_edits).
type WorkingHoursEdit struct {
	EditID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"edit_id"`
	WorkingHoursID string    `gorm:"type:uuid;not null"                             json:"working_hours_id"`
	EditorID       string    `gorm:"type:uuid;not null"                             json:"editor_id"`
	FieldName      string    `gorm:"type:varchar(30);not null"                      json:"field_name"`
	OldValue       string    `gorm:"type:varchar(50);not null"                      json:"old_value"`
	NewValue       string    `gorm:"type:varchar(50);not null"                      json:"new_value"`
	Reason         string    `gorm:"type:text;not null;default:''"                  json:"reason"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (WorkingHoursEdit) TableName() string { return "working_hours_edits" }
