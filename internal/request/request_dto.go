package request

import "time"

type CreateRequestRequest struct {
	ActivityTypeID string `json:"activity_type_id" binding:"required,uuid"`
	StartDate      string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate        string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason         string `json:"reason"`
}

type UpdateRequestRequest struct {
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason    string `json:"reason"`
}

type DecisionRequest struct {
	Comment *string `json:"comment"`
}

type RevisionRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type RequestResponse struct {
	ID             string     `json:"id"`
	RequestNumber  string     `json:"request_number"`
	CompanyID      string     `json:"company_id"`
	UserID         string     `json:"user_id"`
	ActivityTypeID string     `json:"activity_type_id"`
	StartDate      string     `json:"start_date"`
	EndDate        string     `json:"end_date"`
	TotalDays      float64    `json:"total_days"`
	Reason         string     `json:"reason,omitempty"`
	Status         string     `json:"status"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Kind      string    `json:"kind"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func mapToResponse(r LeaveRequest) RequestResponse {
	return RequestResponse{
		ID:             r.ID.String(),
		RequestNumber:  r.RequestNumber,
		CompanyID:      r.CompanyID.String(),
		UserID:         r.UserID.String(),
		ActivityTypeID: r.ActivityTypeID.String(),
		StartDate:      r.StartDate.Format(time.DateOnly),
		EndDate:        r.EndDate.Format(time.DateOnly),
		TotalDays:      r.TotalDays,
		Reason:         r.Reason,
		Status:         r.Status,
		SubmittedAt:    r.SubmittedAt,
		DecidedAt:      r.DecidedAt,
		CancelledAt:    r.CancelledAt,
		CreatedAt:      r.CreatedAt,
	}
}

func mapToCommentResponse(c RequestComment) CommentResponse {
	return CommentResponse{
		ID:        c.ID.String(),
		AuthorID:  c.AuthorID.String(),
		Kind:      c.Kind,
		Comment:   c.Comment,
		CreatedAt: c.CreatedAt,
	}
}
