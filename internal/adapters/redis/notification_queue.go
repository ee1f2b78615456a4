package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kjsce/kj-connect/internal/domain/notify"
	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/redis/go-redis/v9"
)

var _ ports.NotificationQueue = (*NotificationQueue)(nil)

// maxQueued bounds a client's pending notifications; older entries are trimmed.
const maxQueued = 20

// NotificationQueue stores pending notifications for one client in a Redis list.
type NotificationQueue struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NotificationQueueOptions groups constructor inputs for NotificationQueue.
type NotificationQueueOptions struct {
	Client redis.UniversalClient
	Key    string
	TTL    time.Duration
	Logger *slog.Logger
}

// NewNotificationQueue creates a queue backed by the list at opts.Key.
func NewNotificationQueue(opts NotificationQueueOptions) *NotificationQueue {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationQueue{
		client: opts.Client,
		key:    opts.Key,
		ttl:    opts.TTL,
		logger: logger,
	}
}

// Notify appends n to the list. Failures are logged and dropped.
func (q *NotificationQueue) Notify(ctx context.Context, n notify.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		q.logger.WarnContext(ctx, "encode notification", "error", err)
		return
	}

	pipe := q.client.TxPipeline()
	pipe.RPush(ctx, q.key, data)
	pipe.LTrim(ctx, q.key, -maxQueued, -1)
	if q.ttl > 0 {
		pipe.Expire(ctx, q.key, q.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		q.logger.WarnContext(ctx, "queue notification", "error", err, "message", n.Message)
	}
}

// Drain atomically reads and clears the list.
// Entries that fail to decode are skipped.
func (q *NotificationQueue) Drain(ctx context.Context) ([]notify.Notification, error) {
	pipe := q.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, q.key, 0, -1)
	pipe.Del(ctx, q.key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("drain notifications: %w", err)
	}

	raw := rangeCmd.Val()
	out := make([]notify.Notification, 0, len(raw))
	for _, item := range raw {
		var n notify.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			q.logger.DebugContext(ctx, "skip undecodable notification", "error", err)
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
