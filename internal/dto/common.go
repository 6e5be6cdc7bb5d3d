package dto

// PaginationRequest page query parameters
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage defaults to 1.
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize defaults to 20.
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset of the requested page.
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// StationBrief embedded station reference
type StationBrief struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// DriverBrief embedded driver reference
type DriverBrief struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PersonnelNo string `json:"personnel_no"`
}

// VanBrief embedded van reference
type VanBrief struct {
	ID          string `json:"id"`
	PlateNumber string `json:"plate_number"`
}
