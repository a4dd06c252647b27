package user

type ProfileResponse struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	ApprovalLogic string `json:"approval_logic"`
	IsActive      bool   `json:"is_active"`
}

type AssignManagerRequest struct {
	ManagerID string `json:"manager_id" binding:"required,uuid"`
	Level     int    `json:"level" binding:"omitempty,min=1"`
	IsPrimary bool   `json:"is_primary"`
}

type ManagerResponse struct {
	ManagerID string `json:"manager_id"`
	FullName  string `json:"full_name"`
	Level     int    `json:"level"`
	IsPrimary bool   `json:"is_primary"`
}
