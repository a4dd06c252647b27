package approval

import "time"

type ApprovalResponse struct {
	ID         string     `json:"id"`
	RequestID  string     `json:"request_id"`
	ApproverID string     `json:"approver_id"`
	Level      int        `json:"level"`
	Sequence   int        `json:"sequence"`
	Status     string     `json:"status"`
	IsRequired bool       `json:"is_required"`
	Comment    *string    `json:"comment,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}

type CreateProxyRequest struct {
	ProxyUserID string `json:"proxy_user_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" binding:"required,datetime=2006-01-02"`
}

type ProxyResponse struct {
	ID          string `json:"id"`
	ApproverID  string `json:"approver_id"`
	ProxyUserID string `json:"proxy_user_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	IsActive    bool   `json:"is_active"`
}

func mapToApprovalResponse(row RequestApproval) ApprovalResponse {
	return ApprovalResponse{
		ID:         row.ID.String(),
		RequestID:  row.RequestID.String(),
		ApproverID: row.ApproverID.String(),
		Level:      row.Level,
		Sequence:   row.Sequence,
		Status:     row.Status,
		IsRequired: row.IsRequired,
		Comment:    row.Comment,
		DecidedAt:  row.DecidedAt,
	}
}

func mapToProxyResponse(a ProxyAssignment) ProxyResponse {
	return ProxyResponse{
		ID:          a.ID.String(),
		ApproverID:  a.ApproverID.String(),
		ProxyUserID: a.ProxyUserID.String(),
		StartDate:   a.StartDate.Format(time.DateOnly),
		EndDate:     a.EndDate.Format(time.DateOnly),
		IsActive:    a.IsActive,
	}
}
