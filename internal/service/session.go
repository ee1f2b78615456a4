package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kjsce/kj-connect/internal/async"
	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/domain/notify"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/kjsce/kj-connect/internal/observability/metrics"
	"github.com/kjsce/kj-connect/internal/observability/statsd"
	"github.com/kjsce/kj-connect/internal/ports"
)

// DefaultSessionKey is the slot key that holds the serialized session record.
const DefaultSessionKey = "kj-connect-user"

// User-visible session messages.
const (
	MsgLoggedIn      = "Logged in successfully"
	MsgLoggedOut     = "Logged out successfully"
	MsgLoginFailed   = "Login failed. Please try again."
	MsgSessionNotSet = "Could not save your session. Please try again."
)

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Validator ports.CredentialValidator
	Store     ports.SessionStore
	Notifier  ports.Notifier
	Key       string
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// Observer is called with the new identity whenever it changes. ok is false after logout.
type Observer func(identity domainauth.Identity, ok bool)

// SessionManager owns the identity of one client. It restores the identity from the
// client's session slot, logs in against the credential table and logs out.
type SessionManager struct {
	validator ports.CredentialValidator
	store     ports.SessionStore
	notifier  ports.Notifier
	key       string
	logger    *slog.Logger
	metrics   statsd.Sink

	initOnce sync.Once

	mu         sync.RWMutex
	identity   domainauth.Identity
	ok         bool
	generation uint64

	obsMu     sync.Mutex
	nextObsID int
	observers []observerEntry
}

type observerEntry struct {
	id int
	fn Observer
}

// NewSessionManager constructs a SessionManager. The identity is none until Initialize runs.
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	key := opts.Key
	if key == "" {
		key = DefaultSessionKey
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &SessionManager{
		validator: opts.Validator,
		store:     opts.Store,
		notifier:  notifier,
		key:       key,
		logger:    logger.With("component", "session"),
		metrics:   opts.Metrics,
	}
}

// Initialize restores the identity from the session slot. Only the first call does any work.
// A missing, unreadable or invalid record leaves the client logged out; the record is not removed.
func (m *SessionManager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		identity, ok := m.restore(ctx)
		m.mu.Lock()
		m.identity, m.ok = identity, ok
		m.mu.Unlock()
	})
}

func (m *SessionManager) restore(ctx context.Context) (domainauth.Identity, bool) {
	if m.store == nil {
		return domainauth.Identity{}, false
	}
	raw, err := m.store.Get(ctx, m.key)
	if errors.Is(err, ports.ErrNotFound) {
		return domainauth.Identity{}, false
	}
	if apperrors.IsCorruptSession(err) {
		m.logger.DebugContext(ctx, "ignoring unreadable session slot", "error", err)
		return domainauth.Identity{}, false
	}
	if err != nil {
		m.logger.WarnContext(ctx, "session slot unavailable, treating client as logged out", "error", err)
		return domainauth.Identity{}, false
	}
	identity, err := domainauth.DecodeRecord(raw)
	if err != nil {
		m.logger.DebugContext(ctx, "ignoring stored session record", "error", apperrors.CorruptSession(err))
		return domainauth.Identity{}, false
	}
	return identity, true
}

// Current returns the current identity and whether there is one.
func (m *SessionManager) Current() (domainauth.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity, m.ok
}

// IsAuthenticated reports whether an identity is present.
func (m *SessionManager) IsAuthenticated() bool {
	_, ok := m.Current()
	return ok
}

// Login validates the credentials and, on success, adopts and persists the identity.
// Every outcome emits a notification. It returns true only when the identity changed to the new one.
func (m *SessionManager) Login(ctx context.Context, email, secret string) bool {
	return m.login(ctx, email, secret, m.currentGeneration())
}

// LoginAsync runs Login on its own goroutine. The result is applied only if no other
// login or logout completed in the meantime; a stale completion resolves to false and
// changes nothing. The work is not tied to ctx cancellation.
func (m *SessionManager) LoginAsync(ctx context.Context, email, secret string) *async.Future[bool] {
	gen := m.currentGeneration()
	return async.Go(context.WithoutCancel(ctx), func(ctx context.Context) (bool, error) {
		return m.login(ctx, email, secret, gen), nil
	})
}

func (m *SessionManager) login(ctx context.Context, email, secret string, startGen uint64) bool {
	if m.validator == nil {
		m.fail(ctx, startGen, apperrors.Internal("credential validator not configured"))
		return false
	}

	identity, err := m.validator.Validate(ctx, email, secret)
	if err != nil {
		m.fail(ctx, startGen, err)
		return false
	}
	record, err := domainauth.EncodeRecord(identity)
	if err != nil {
		m.fail(ctx, startGen, apperrors.Wrap(err, apperrors.ErrCodeInternal, MsgLoginFailed))
		return false
	}

	m.mu.Lock()
	if m.generation != startGen {
		m.mu.Unlock()
		m.logger.DebugContext(ctx, "discarding stale login result", "email", identity.Email)
		return false
	}
	if m.store != nil {
		if setErr := m.store.Set(ctx, m.key, record); setErr != nil {
			m.mu.Unlock()
			m.logger.ErrorContext(ctx, "failed to persist session record", "error", setErr, "email", identity.Email)
			metrics.EmitLogin(m.metrics, metrics.ResultError, setErr)
			m.notifier.Notify(ctx, notify.Error(MsgSessionNotSet))
			return false
		}
	}
	prev, prevOK := m.identity, m.ok
	m.identity, m.ok = identity, true
	m.generation++
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "login succeeded", "user_id", identity.ID, "role", identity.Role)
	metrics.EmitLogin(m.metrics, metrics.ResultSuccess, nil)
	m.notifier.Notify(ctx, notify.Success(MsgLoggedIn))
	if !prevOK || prev != identity {
		m.publish(identity, true)
	}
	return true
}

// fail reports a failed login unless the attempt has gone stale.
func (m *SessionManager) fail(ctx context.Context, startGen uint64, err error) {
	if m.currentGeneration() != startGen {
		return
	}
	if apperrors.IsInvalidCredential(err) {
		m.logger.WarnContext(ctx, "login rejected", "reason", apperrors.ErrCodeInvalidCredential)
		metrics.EmitLogin(m.metrics, metrics.ResultFailure, err)
		m.notifier.Notify(ctx, notify.Error(apperrors.MsgInvalidCredential))
		return
	}
	m.logger.ErrorContext(ctx, "login failed", "error", err)
	metrics.EmitLogin(m.metrics, metrics.ResultError, err)
	m.notifier.Notify(ctx, notify.Error(MsgLoginFailed))
}

// Logout clears the identity and erases the stored record. It is safe to call when
// already logged out and always confirms with a notification.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	wasOK := m.ok
	m.identity, m.ok = domainauth.Identity{}, false
	m.generation++
	var delErr error
	if m.store != nil {
		delErr = m.store.Delete(ctx, m.key)
	}
	m.mu.Unlock()

	if delErr != nil {
		m.logger.WarnContext(ctx, "failed to erase session record", "error", delErr)
	}
	if wasOK {
		m.logger.InfoContext(ctx, "logout")
	}
	metrics.EmitLogout(m.metrics)
	m.notifier.Notify(ctx, notify.Success(MsgLoggedOut))
	if wasOK {
		m.publish(domainauth.Identity{}, false)
	}
}

// Subscribe registers fn for identity changes and returns a function that removes it.
func (m *SessionManager) Subscribe(fn Observer) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	m.obsMu.Lock()
	m.nextObsID++
	id := m.nextObsID
	m.observers = append(m.observers, observerEntry{id: id, fn: fn})
	m.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.obsMu.Lock()
			defer m.obsMu.Unlock()
			for i, o := range m.observers {
				if o.id == id {
					m.observers = append(m.observers[:i], m.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (m *SessionManager) publish(identity domainauth.Identity, ok bool) {
	m.obsMu.Lock()
	fns := make([]Observer, len(m.observers))
	for i, o := range m.observers {
		fns[i] = o.fn
	}
	m.obsMu.Unlock()

	for _, fn := range fns {
		fn(identity, ok)
	}
}

func (m *SessionManager) currentGeneration() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, notify.Notification) {}
