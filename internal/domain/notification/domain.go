package notification

import "time"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	ActionLink string    `json:"action_link"`
	IsRead     bool      `json:"is_read"`
	Priority   Priority  `json:"priority"`
	SentAt     time.Time `json:"sent_at"`
}
