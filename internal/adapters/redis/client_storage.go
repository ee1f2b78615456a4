package redis

import (
	"log/slog"
	"time"

	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/redis/go-redis/v9"
)

var _ ports.ClientStorage = (*ClientStorage)(nil)

const (
	slotNamespace = "slot:"
	flashKey      = "flash"
)

// ClientStorageOptions configures per-client key layout and expiry.
type ClientStorageOptions struct {
	Prefix     string        // defaults to DefaultPrefix
	SessionTTL time.Duration // 0 keeps session records until logout
	FlashTTL   time.Duration // expiry of undelivered notifications
	Logger     *slog.Logger
}

// ClientStorage builds Redis adapters scoped to a client id.
// Layout: <prefix><client>:slot:<key> for session slots, <prefix><client>:flash for
// notifications. Slot keys live in their own sub-namespace so no session key can
// land on the queue.
type ClientStorage struct {
	client redis.UniversalClient
	opts   ClientStorageOptions
}

// NewClientStorage creates storage over a shared Redis client.
func NewClientStorage(client redis.UniversalClient, opts ClientStorageOptions) *ClientStorage {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	return &ClientStorage{client: client, opts: opts}
}

// SessionStore returns the slot for clientID.
//
//nolint:ireturn // satisfies ports.ClientStorage.
func (c *ClientStorage) SessionStore(clientID string) ports.SessionStore {
	return NewSessionStore(c.client, c.clientPrefix(clientID)+slotNamespace, c.opts.SessionTTL)
}

// Notifications returns the notification queue for clientID.
//
//nolint:ireturn // satisfies ports.ClientStorage.
func (c *ClientStorage) Notifications(clientID string) ports.NotificationQueue {
	return NewNotificationQueue(NotificationQueueOptions{
		Client: c.client,
		Key:    c.clientPrefix(clientID) + flashKey,
		TTL:    c.opts.FlashTTL,
		Logger: c.opts.Logger,
	})
}

func (c *ClientStorage) clientPrefix(clientID string) string {
	return c.opts.Prefix + clientID + ":"
}
