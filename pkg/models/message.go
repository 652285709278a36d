package models

import "time"

// Message is a single chat message. Messages are immutable once written and
// are removed only as a cascade of their parent chat's deletion.
type Message struct {
	ID     string    `json:"id"`
	ChatID string    `json:"chatId"`
	Sender string    `json:"sender,omitempty"`
	Text   string    `json:"text,omitempty"`
	SentAt time.Time `json:"sentAt"`
}
