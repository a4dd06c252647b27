package events

import "time"

const (
	// RequestLifecycleTopic carries every request state transition.
	RequestLifecycleTopic = "leave.request.lifecycle.v1"
	// ApprovalTaskTopic notifies approvers about chain slots awaiting them.
	ApprovalTaskTopic = "leave.approval.task.v1"
)

const (
	EventRequestSubmitted         = "request.submitted"
	EventRequestApproved          = "request.approved"
	EventRequestRejected          = "request.rejected"
	EventRequestCancelled         = "request.cancelled"
	EventRequestRevisionRequested = "request.revision_requested"
	EventApprovalPending          = "approval.pending"
)

// RequestLifecycleEvent is the payload for every lifecycle topic message.
// Status is the request status after the transition.
type RequestLifecycleEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id"`
	RequestNumber string    `json:"request_number"`
	UserID        string    `json:"user_id"`
	CompanyID     string    `json:"company_id"`
	ActorID       string    `json:"actor_id"`
	Status        string    `json:"status"`
	TotalDays     float64   `json:"total_days"`
	Comment       string    `json:"comment,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ApprovalPendingEvent targets one approver whose decision is awaited.
type ApprovalPendingEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id"`
	RequestNumber string    `json:"request_number"`
	ApproverID    string    `json:"approver_id"`
	Level         int       `json:"level"`
	Sequence      int       `json:"sequence"`
	OccurredAt    time.Time `json:"occurred_at"`
}
