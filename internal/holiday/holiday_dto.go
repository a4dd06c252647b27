package holiday

type CreateHolidayRequest struct {
	Name      string  `json:"name" binding:"required,max=100"`
	Date      string  `json:"date" binding:"required"`
	CompanyID *string `json:"company_id" binding:"omitempty,uuid"`
}

type HolidayResponse struct {
	ID        string  `json:"id"`
	CompanyID *string `json:"company_id,omitempty"`
	Name      string  `json:"name"`
	Date      string  `json:"date"`
	IsActive  bool    `json:"is_active"`
}
