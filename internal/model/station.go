package model

// Station depot and tenant boundary (table stations)
type Station struct {
	StationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"station_id"`
	Code      string `gorm:"type:varchar(10);not null"                      json:"code"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	Address   string `gorm:"type:varchar(255);not null;default:''"          json:"address"`
	IsActive  bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

func (Station) TableName() string { return "stations" }
