package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered      EventType = "account_registered"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordResetCompleted EventType = "password_reset_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PasswordResetRequestedPayload payload. Token is the raw reset secret
// needed to build the email link; it is never logged.
type PasswordResetRequestedPayload struct {
	Email string `json:"-"`
	Token string `json:"-"`
}

// PasswordResetCompletedPayload payload.
type PasswordResetCompletedPayload struct {
	Email string `json:"-"`
}
