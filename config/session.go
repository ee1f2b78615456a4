package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionBackend selects where client session slots and notifications live.
type SessionBackend string

const (
	// SessionBackendMemory keeps everything in process; state is lost on restart.
	SessionBackendMemory SessionBackend = "memory"
	// SessionBackendRedis shares state across instances through Redis.
	SessionBackendRedis SessionBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*b = SessionBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: memory, redis)", v)
	}
}

// SessionConfig controls the per-client session slot and notification queue.
type SessionConfig struct {
	Backend SessionBackend `env:"SESSION_BACKEND" envDefault:"memory"`

	// Key names the record inside a client's slot.
	Key string `env:"SESSION_KEY" envDefault:"kj-connect-user"`

	// ClientCookie names the cookie carrying the client id.
	ClientCookie string `env:"SESSION_CLIENT_COOKIE" envDefault:"kjc_client"`

	// ClientTTL expires idle Redis slots; 0 keeps them until logout.
	ClientTTL time.Duration `env:"SESSION_CLIENT_TTL" envDefault:"0"`

	// FlashTTL expires notifications that were queued but never shown.
	FlashTTL time.Duration `env:"SESSION_FLASH_TTL" envDefault:"10m"`

	// QueueMax bounds undelivered notifications per client in memory mode.
	QueueMax int `env:"SESSION_QUEUE_MAX" envDefault:"20"`

	// RedisPrefix namespaces Redis keys; empty uses the adapter default.
	RedisPrefix string `env:"SESSION_REDIS_PREFIX" envDefault:""`
}

// Sanitize restores defaults for blank or negative values.
func (s *SessionConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = SessionBackendMemory
	}
	if s.Key = strings.TrimSpace(s.Key); s.Key == "" {
		s.Key = "kj-connect-user"
	}
	if s.ClientCookie = strings.TrimSpace(s.ClientCookie); s.ClientCookie == "" {
		s.ClientCookie = "kjc_client"
	}
	if s.ClientTTL < 0 {
		s.ClientTTL = 0
	}
	if s.FlashTTL <= 0 {
		s.FlashTTL = 10 * time.Minute
	}
	if s.QueueMax <= 0 {
		s.QueueMax = 20
	}
}
