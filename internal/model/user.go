package model

// User login account (table users)
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'driver'"     json:"role"`
	StationID    *string `gorm:"type:uuid"                                      json:"station_id,omitempty"` // managers, drivers
	DriverID     *string `gorm:"type:uuid"                                      json:"driver_id,omitempty"`  // drivers only
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	Station *Station `gorm:"foreignKey:StationID;references:StationID" json:"station,omitempty"`
}

func (User) TableName() string { return "users" }
