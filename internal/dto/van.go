package dto

// CreateVanRequest new vehicle
type CreateVanRequest struct {
	StationID   string `json:"station_id"   binding:"omitempty,uuid"`
	PlateNumber string `json:"plate_number" binding:"required,max=15"`
	Model       string `json:"model"        binding:"max=60"`
	VIN         string `json:"vin"          binding:"omitempty,len=17"`
	Mileage     int    `json:"mileage"      binding:"min=0"`
}

// UpdateVanRequest partial update
type UpdateVanRequest struct {
	PlateNumber *string `json:"plate_number" binding:"omitempty,max=15"`
	Model       *string `json:"model"        binding:"omitempty,max=60"`
	VIN         *string `json:"vin"          binding:"omitempty,len=17"`
	Mileage     *int    `json:"mileage"      binding:"omitempty,min=0"`
	Status      *string `json:"status"       binding:"omitempty,oneof=active workshop retired"`
}

// VanListRequest van list query
type VanListRequest struct {
	StationID string `form:"station_id" binding:"omitempty,uuid"`
	Status    string `form:"status"     binding:"omitempty,oneof=active workshop retired"`
	PaginationRequest
}

// VanResponse vehicle detail
type VanResponse struct {
	ID          string `json:"id"`
	StationID   string `json:"station_id"`
	PlateNumber string `json:"plate_number"`
	Model       string `json:"model"`
	VIN         string `json:"vin"`
	Mileage     int    `json:"mileage"`
	Status      string `json:"status"`
}

// MaintenanceLogResponse workshop visit
type MaintenanceLogResponse struct {
	ID             string  `json:"id"`
	VanID          string  `json:"van_id"`
	ServiceDate    string  `json:"service_date"`
	Mileage        int     `json:"mileage"`
	Kind           string  `json:"kind"`
	Description    string  `json:"description"`
	CostCents      int64   `json:"cost_cents"`
	AttachmentName *string `json:"attachment_name,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// CreateMaintenanceLogRequest multipart form fields; the file part is "attachment"
type CreateMaintenanceLogRequest struct {
	ServiceDate string `form:"service_date" binding:"required"`
	Mileage     int    `form:"mileage"      binding:"min=0"`
	Kind        string `form:"kind"         binding:"required,oneof=inspection repair tyres other"`
	Description string `form:"description"  binding:"max=2000"`
	CostCents   int64  `form:"cost_cents"   binding:"min=0"`
}

// AttachmentURLResponse presigned download link
type AttachmentURLResponse struct {
	URL string `json:"url"`
}
