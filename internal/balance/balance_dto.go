package balance

type BalanceResponse struct {
	UserID          string  `json:"user_id"`
	ActivityTypeID  string  `json:"activity_type_id"`
	Year            int     `json:"year"`
	TotalDays       float64 `json:"total_days"`
	UsedDays        float64 `json:"used_days"`
	PendingDays     float64 `json:"pending_days"`
	CarriedOverDays float64 `json:"carried_over_days"`
	AdjustmentDays  float64 `json:"adjustment_days"`
	AvailableDays   float64 `json:"available_days"`
}

type AdjustBalanceRequest struct {
	UserID         string  `json:"user_id" binding:"required,uuid"`
	ActivityTypeID string  `json:"activity_type_id" binding:"required,uuid"`
	Year           int     `json:"year" binding:"required"`
	Delta          float64 `json:"delta" binding:"required"`
	Reason         string  `json:"reason" binding:"required"`
}

type CarryOverRequest struct {
	UserID   string `json:"user_id" binding:"required,uuid"`
	FromYear int    `json:"from_year" binding:"required"`
}

type InitializeBalanceRequest struct {
	UserID         string `json:"user_id" binding:"required,uuid"`
	ActivityTypeID string `json:"activity_type_id" binding:"required,uuid"`
	Year           int    `json:"year" binding:"required"`
}
