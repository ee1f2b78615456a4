package httpx

import (
	"context"

	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/kjsce/kj-connect/internal/service"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// ClientScope is everything a request knows about the client that sent it.
type ClientScope struct {
	ClientID      string
	Session       *service.SessionManager
	Notifications ports.NotificationQueue
}

// SetClientScopeInContext returns a child context that carries the client scope.
// A nil scope returns ctx unchanged.
func SetClientScopeInContext(ctx context.Context, scope *ClientScope) context.Context {
	if scope == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, scope)
}

// GetClientScope returns the client scope and whether one is present.
func GetClientScope(ctx context.Context) (*ClientScope, bool) {
	scope, ok := ctx.Value(sessionKey{}).(*ClientScope)
	return scope, ok && scope != nil
}

// GetSessionManager returns the request's session manager, or nil outside ClientSession.
func GetSessionManager(ctx context.Context) *service.SessionManager {
	if scope, ok := GetClientScope(ctx); ok {
		return scope.Session
	}
	return nil
}

// CurrentIdentity returns the identity of the requesting client, if logged in.
func CurrentIdentity(ctx context.Context) (domainauth.Identity, bool) {
	if m := GetSessionManager(ctx); m != nil {
		return m.Current()
	}
	return domainauth.Identity{}, false
}

// notifier returns the client's notification queue, or a no-op when none is attached.
func notifier(ctx context.Context) ports.Notifier {
	if scope, ok := GetClientScope(ctx); ok && scope.Notifications != nil {
		return scope.Notifications
	}
	return nopNotifier{}
}
