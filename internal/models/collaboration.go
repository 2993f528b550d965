package models

import "time"

// CollaborationRequest is a row of the collaboration_requests table.
type CollaborationRequest struct {
	RequestID   string     `db:"request_id"`
	SenderID    string     `db:"sender_id"`
	ReceiverID  string     `db:"receiver_id"`
	Message     string     `db:"message"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	RespondedAt *time.Time `db:"responded_at"`
}
