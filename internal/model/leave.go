package model

import "time"

// Leave types
const (
	LeaveTypePaid = "paid"
	LeaveTypeSick = "sick"
)

// DriverLeave a paid or sick absence, inclusive on both ends (table driver_leaves)
type DriverLeave struct {
	LeaveID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"leave_id"`
	DriverID  string    `gorm:"type:uuid;not null"                             json:"driver_id"`
	StationID string    `gorm:"type:uuid;not null"                             json:"station_id"`
	LeaveType string    `gorm:"type:varchar(10);not null"                      json:"leave_type"`
	StartDate time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null"                             json:"end_date"`
	Reason    string    `gorm:"type:text;not null;default:''"                  json:"reason"`
	SoftDeleteModel

	Driver *Driver `gorm:"foreignKey:DriverID;references:DriverID" json:"driver,omitempty"`
}

func (DriverLeave) TableName() string { return "driver_leaves" }

// Covers reports whether the civil date day falls inside [StartDate, EndDate].
func (l *DriverLeave) Covers(day time.Time) bool {
	d := CivilDate(day)
	return !d.Before(CivilDate(l.StartDate)) && !d.After(CivilDate(l.EndDate))
}

// ValidLeaveType reports whether t is a known leave type.
func ValidLeaveType(t string) bool {
	return t == LeaveTypePaid || t == LeaveTypeSick
}
