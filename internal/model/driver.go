package model

import "time"

// Driver delivery driver employed at one station (table drivers)
type Driver struct {
	DriverID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"driver_id"`
	StationID     string     `gorm:"type:uuid;not null"                             json:"station_id"`
	FirstName     string     `gorm:"type:varchar(60);not null"                      json:"first_name"`
	LastName      string     `gorm:"type:varchar(60);not null"                      json:"last_name"`
	PersonnelNo   string     `gorm:"type:varchar(20);not null"                      json:"personnel_no"`
	Phone         string     `gorm:"type:varchar(30);not null;default:''"           json:"phone"`
	Email         string     `gorm:"type:varchar(255);not null;default:''"          json:"email"`
	LicenceExpiry *time.Time `gorm:"type:date"                                      json:"licence_expiry,omitempty"`
	IsActive      bool       `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	Station *Station `gorm:"foreignKey:StationID;references:StationID" json:"station,omitempty"`
}

func (Driver) TableName() string { return "drivers" }

// FullName "First Last"
func (d *Driver) FullName() string {
	return d.FirstName + " " + d.LastName
}
