package models

import "time"

// Chat is the typed view of a stored chat record. Stored chats are raw JSON
// and may carry attributes beyond these fields; repository writes operate on
// the raw document so unknown fields survive partial updates.
type Chat struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	// PickupTime is the trip's pickup timestamp. Chats with no pickup time
	// never expire; otherwise the chat and its messages are reclaimed a
	// fixed window after pickup.
	PickupTime *time.Time `json:"pickupTime,omitempty"`
	// LastMessage / LastMessageTime cache the most recently written message
	// for the chat list view. Kept in sync by the message writer.
	LastMessage     string     `json:"lastMessage,omitempty"`
	LastMessageTime *time.Time `json:"lastMessageTime,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}
