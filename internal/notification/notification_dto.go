package notification

import "time"

type NotificationResponse struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	EventType string    `json:"event_type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
