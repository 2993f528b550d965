package models

import "time"

// ChatMessage is a row of the chat_messages table.
type ChatMessage struct {
	MessageID   string     `db:"message_id"`
	SenderID    string     `db:"sender_id"`
	ReceiverID  string     `db:"receiver_id"`
	Body        string     `db:"body"`
	SentAt      time.Time  `db:"sent_at"`
	DeliveredAt *time.Time `db:"delivered_at"`
}
