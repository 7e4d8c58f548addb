package model

import "time"

type QueueStatus string

const (
	QueueStatusPending QueueStatus = "pending"
	QueueStatusSending QueueStatus = "sending"
	QueueStatusSent    QueueStatus = "sent"
	QueueStatusFailed  QueueStatus = "failed"
)

// EmailQueueItem is one pending newsletter dispatch for a post. Items only
// move forward: pending -> sending -> (sent|failed). The sender itself marks
// sent; this service never does.
type EmailQueueItem struct {
	ID           string      `db:"id" json:"id"`
	PostID       string      `db:"post_id" json:"post_id"`
	Status       QueueStatus `db:"status" json:"status"`
	ScheduledFor time.Time   `db:"scheduled_for" json:"scheduled_for"`
	ErrorMessage *string     `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}
