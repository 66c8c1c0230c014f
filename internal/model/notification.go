package model

import "time"

// Notification is a user-facing notice derived from a realtime event.
// Notifications are client-owned: they are created only from realtime
// events and mutated by "mark read" and "remove" operations.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// MessageID links this notification to the message it concerns.
	MessageID int `json:"message_id"`

	// Text is the human-readable notification line.
	Text string `json:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
