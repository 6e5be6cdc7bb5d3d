package model

import "time"

// Maintenance kinds
const (
	MaintenanceInspection = "inspection"
	MaintenanceRepair     = "repair"
	MaintenanceTyres      = "tyres"
	MaintenanceOther      = "other"
)

// MaintenanceLog workshop visit of a van (table maintenance_logs)
type MaintenanceLog struct {
	MaintenanceLogID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"maintenance_log_id"`
	VanID            string    `gorm:"type:uuid;not null"                             json:"van_id"`
	StationID        string    `gorm:"type:uuid;not null"                             json:"station_id"`
	ServiceDate      time.Time `gorm:"type:date;not null"                             json:"service_date"`
	Mileage          int       `gorm:"not null"                                       json:"mileage"`
	Kind             string    `gorm:"type:varchar(20);not null"                      json:"kind"`
	Description      string    `gorm:"type:text;not null;default:''"                  json:"description"`
	CostCents        int64     `gorm:"not null;default:0"                             json:"cost_cents"`
	AttachmentKey    *string   `gorm:"type:varchar(255)"                              json:"-"`
	AttachmentName   *string   `gorm:"type:varchar(255)"                              json:"attachment_name,omitempty"`
	SoftDeleteModel
}

func (MaintenanceLog) TableName() string { return "maintenance_logs" }

// ValidMaintenanceKind reports whether k is a known kind.
func ValidMaintenanceKind(k string) bool {
	switch k {
	case MaintenanceInspection, MaintenanceRepair, MaintenanceTyres, MaintenanceOther:
		return true
	}
	return false
}
