// Package notify defines user-facing notifications shown as toasts after an action.
package notify

import "time"

// Severity classifies how a notification is presented.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a single transient message for the user.
type Notification struct {
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Success builds a success notification stamped with the current time.
func Success(msg string) Notification {
	return Notification{Severity: SeveritySuccess, Message: msg, CreatedAt: time.Now().UTC()}
}

// Error builds an error notification stamped with the current time.
func Error(msg string) Notification {
	return Notification{Severity: SeverityError, Message: msg, CreatedAt: time.Now().UTC()}
}

// Info builds an informational notification stamped with the current time.
func Info(msg string) Notification {
	return Notification{Severity: SeverityInfo, Message: msg, CreatedAt: time.Now().UTC()}
}
