package dto

// CreateStationRequest new depot
type CreateStationRequest struct {
	Code    string `json:"code"    binding:"required,min=2,max=10"`
	Name    string `json:"name"    binding:"required,max=100"`
	Address string `json:"address" binding:"max=255"`
}

// UpdateStationRequest partial update
type UpdateStationRequest struct {
	Code     *string `json:"code"      binding:"omitempty,min=2,max=10"`
	Name     *string `json:"name"      binding:"omitempty,max=100"`
	Address  *string `json:"address"   binding:"omitempty,max=255"`
	IsActive *bool   `json:"is_active"`
}

// StationResponse station detail
type StationResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	IsActive    bool   `json:"is_active"`
	DriverCount int64  `json:"driver_count"`
}
