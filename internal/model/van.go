package model

// Van status values
const (
	VanStatusActive   = "active"
	VanStatusWorkshop = "workshop"
	VanStatusRetired  = "retired"
)

// Van delivery vehicle (table vans)
type Van struct {
	VanID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"van_id"`
	StationID   string `gorm:"type:uuid;not null"                             json:"station_id"`
	PlateNumber string `gorm:"type:varchar(15);not null"                      json:"plate_number"`
	Model       string `gorm:"type:varchar(60);not null;default:''"           json:"model"`
	VIN         string `gorm:"column:vin;type:varchar(17);not null;default:''" json:"vin"`
	Mileage     int    `gorm:"not null;default:0"                             json:"mileage"`
	Status      string `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	VersionedModel
}

func (Van) TableName() string { return "vans" }

// ValidVanStatus reports whether s is a known van status.
func ValidVanStatus(s string) bool {
	return s == VanStatusActive || s == VanStatusWorkshop || s == VanStatusRetired
}
