package dto

// CreateDriverRequest new driver. Managers may only create in their own station.
type CreateDriverRequest struct {
	StationID     string `json:"station_id"     binding:"omitempty,uuid"`
	FirstName     string `json:"first_name"     binding:"required,max=60"`
	LastName      string `json:"last_name"      binding:"required,max=60"`
	PersonnelNo   string `json:"personnel_no"   binding:"required,max=20"`
	Phone         string `json:"phone"          binding:"max=30"`
	Email         string `json:"email"          binding:"omitempty,email"`
	LicenceExpiry string `json:"licence_expiry"` // YYYY-MM-DD
}

// UpdateDriverRequest partial update
type UpdateDriverRequest struct {
	FirstName     *string `json:"first_name"   binding:"omitempty,max=60"`
	LastName      *string `json:"last_name"    binding:"omitempty,max=60"`
	PersonnelNo   *string `json:"personnel_no" binding:"omitempty,max=20"`
	Phone         *string `json:"phone"        binding:"omitempty,max=30"`
	Email         *string `json:"email"        binding:"omitempty,email"`
	LicenceExpiry *string `json:"licence_expiry"`
	IsActive      *bool   `json:"is_active"`
}

// DriverListRequest driver list query
type DriverListRequest struct {
	StationID  string `form:"station_id" binding:"omitempty,uuid"`
	Search     string `form:"q"`
	ActiveOnly bool   `form:"active_only"`
	PaginationRequest
}

// DriverResponse driver detail
type DriverResponse struct {
	ID            string        `json:"id"`
	Station       *StationBrief `json:"station,omitempty"`
	StationID     string        `json:"station_id"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	PersonnelNo   string        `json:"personnel_no"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email"`
	LicenceExpiry *string       `json:"licence_expiry,omitempty"`
	IsActive      bool          `json:"is_active"`
}
