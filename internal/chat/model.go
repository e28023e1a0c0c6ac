// Package chat provides landlord–tenant messaging over polling REST.
package chat

import "time"

// Message is a single chat message tied to a property.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	PropertyID int64     `json:"property_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`

	SenderName string `json:"sender_name,omitempty"`
}

// Conversation summarizes a property thread for the conversation list:
// the last message plus the number of unread messages addressed to the
// requesting user.
type Conversation struct {
	PropertyID   int64     `json:"property_id"`
	PropertyName string    `json:"property_name"`
	LastMessage  string    `json:"last_message"`
	LastSender   string    `json:"last_sender"`
	LastAt       time.Time `json:"last_at"`
	Unread       int       `json:"unread"`
}
