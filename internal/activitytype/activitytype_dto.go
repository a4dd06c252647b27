package activitytype

type CreateActivityTypeRequest struct {
	Name                      string   `json:"name" binding:"required,max=100"`
	Code                      string   `json:"code" binding:"required,max=30"`
	CompanyID                 *string  `json:"company_id" binding:"omitempty,uuid"`
	RequiresApproval          *bool    `json:"requires_approval"`
	ApprovalWorkflow          string   `json:"approval_workflow" binding:"required,oneof=AUTO_APPROVE SINGLE_LEVEL MULTI_LEVEL SKIP_LEVEL"`
	MaxApprovalLevels         *int     `json:"max_approval_levels" binding:"omitempty,min=1"`
	DeductsFromBalance        *bool    `json:"deducts_from_balance"`
	DefaultAnnualBalance      *float64 `json:"default_annual_balance" binding:"omitempty,min=0"`
	AllowNegativeBalance      bool     `json:"allow_negative_balance"`
	AllowCarryOver            bool     `json:"allow_carry_over"`
	MaxCarryOverDays          *float64 `json:"max_carry_over_days" binding:"omitempty,min=0"`
	TimeTrackingMode          string   `json:"time_tracking_mode" binding:"omitempty,oneof=FULL_DAY HALF_DAY"`
	AllowOverlapping          bool     `json:"allow_overlapping"`
	AllowCancellation         *bool    `json:"allow_cancellation"`
	CancellationDeadlineHours *int     `json:"cancellation_deadline_hours" binding:"omitempty,min=0"`
}

type UpdateActivityTypeRequest struct {
	Name                      string   `json:"name" binding:"required,max=100"`
	IsActive                  *bool    `json:"is_active"`
	RequiresApproval          *bool    `json:"requires_approval"`
	ApprovalWorkflow          string   `json:"approval_workflow" binding:"required,oneof=AUTO_APPROVE SINGLE_LEVEL MULTI_LEVEL SKIP_LEVEL"`
	MaxApprovalLevels         *int     `json:"max_approval_levels" binding:"omitempty,min=1"`
	DeductsFromBalance        *bool    `json:"deducts_from_balance"`
	DefaultAnnualBalance      *float64 `json:"default_annual_balance" binding:"omitempty,min=0"`
	AllowNegativeBalance      bool     `json:"allow_negative_balance"`
	AllowCarryOver            bool     `json:"allow_carry_over"`
	MaxCarryOverDays          *float64 `json:"max_carry_over_days" binding:"omitempty,min=0"`
	TimeTrackingMode          string   `json:"time_tracking_mode" binding:"omitempty,oneof=FULL_DAY HALF_DAY"`
	AllowOverlapping          bool     `json:"allow_overlapping"`
	AllowCancellation         *bool    `json:"allow_cancellation"`
	CancellationDeadlineHours *int     `json:"cancellation_deadline_hours" binding:"omitempty,min=0"`
}

type ActivityTypeResponse struct {
	ID                        string   `json:"id"`
	CompanyID                 *string  `json:"company_id,omitempty"`
	Name                      string   `json:"name"`
	Code                      string   `json:"code"`
	IsActive                  bool     `json:"is_active"`
	RequiresApproval          bool     `json:"requires_approval"`
	ApprovalWorkflow          string   `json:"approval_workflow"`
	MaxApprovalLevels         *int     `json:"max_approval_levels,omitempty"`
	DeductsFromBalance        bool     `json:"deducts_from_balance"`
	DefaultAnnualBalance      *float64 `json:"default_annual_balance,omitempty"`
	AllowNegativeBalance      bool     `json:"allow_negative_balance"`
	AllowCarryOver            bool     `json:"allow_carry_over"`
	MaxCarryOverDays          *float64 `json:"max_carry_over_days,omitempty"`
	TimeTrackingMode          string   `json:"time_tracking_mode"`
	AllowOverlapping          bool     `json:"allow_overlapping"`
	AllowCancellation         bool     `json:"allow_cancellation"`
	CancellationDeadlineHours *int     `json:"cancellation_deadline_hours,omitempty"`
}
