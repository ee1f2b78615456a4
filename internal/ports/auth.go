// Package ports defines interfaces (hexagonal ports) for session, credential, and notification behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"errors"

	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/domain/notify"
)

// ErrNotFound is returned by SessionStore.Get when the key holds no value.
var ErrNotFound = errors.New("session key not found")

// SessionStore is a key-value slot scoped to a single client.
// It holds the serialized session record under a fixed namespace key.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CredentialValidator checks an email and secret against the credential table.
// On mismatch it returns an error satisfying errors.Is(err, apperrors.ErrInvalidCredential),
// identical whether the email or the secret was wrong.
type CredentialValidator interface {
	Validate(ctx context.Context, email, secret string) (domainauth.Identity, error)
}

// Notifier is a fire-and-forget sink for user-visible messages.
// Implementations must not block callers on delivery and never report failures back.
type Notifier interface {
	Notify(ctx context.Context, n notify.Notification)
}

// NotificationQueue is a Notifier whose messages are held until the next page render.
type NotificationQueue interface {
	Notifier
	Drain(ctx context.Context) ([]notify.Notification, error)
}

// ClientStorage hands out the session slot and notification queue owned by one client.
type ClientStorage interface {
	SessionStore(clientID string) SessionStore
	Notifications(clientID string) NotificationQueue
}
