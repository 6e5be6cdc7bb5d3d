package dto

// CreateUserRequest admin creates an account
type CreateUserRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	Email     string `json:"email"      binding:"required,email"`
	Password  string `json:"password"   binding:"required,min=8,max=72"`
	Role      string `json:"role"       binding:"required,oneof=admin manager driver"`
	StationID string `json:"station_id" binding:"omitempty,uuid"`
	DriverID  string `json:"driver_id"  binding:"omitempty,uuid"`
}

// UpdateUserRequest partial update; nil fields are left alone
type UpdateUserRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	Role      *string `json:"role"       binding:"omitempty,oneof=admin manager driver"`
	StationID *string `json:"station_id" binding:"omitempty,uuid"`
	IsActive  *bool   `json:"is_active"`
}

// UserListRequest user list query
type UserListRequest struct {
	StationID string `form:"station_id" binding:"omitempty,uuid"`
	PaginationRequest
}

// UserResponse account without secrets
type UserResponse struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Role     string        `json:"role"`
	Station  *StationBrief `json:"station,omitempty"`
	DriverID *string       `json:"driver_id,omitempty"`
	IsActive bool          `json:"is_active"`
}
