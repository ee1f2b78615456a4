package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kjsce/kj-connect/internal/domain/notify"
	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/kjsce/kj-connect/internal/service"
)

// DefaultClientCookieName names the cookie that carries the opaque client id.
const DefaultClientCookieName = "kjc_client"

const clientCookieMaxAge = 365 * 24 * 60 * 60

// SessionFactory builds the session manager bound to one client's slot.
type SessionFactory func(store ports.SessionStore, notifier ports.Notifier) *service.SessionManager

// ClientSessionConfig configures the ClientSession middleware.
type ClientSessionConfig struct {
	Storage      ports.ClientStorage
	NewSession   SessionFactory
	CookieName   string
	CookieDomain string
	Logger       *slog.Logger
}

// ClientSession identifies the client by its kjc_client cookie, issuing a fresh id on first
// visit, and attaches a session manager restored from that client's slot to the request.
// Static assets and health checks skip the lookup.
func ClientSession(cfg ClientSessionConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultClientCookieName
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipClientScope(r.URL.Path) || cfg.Storage == nil || cfg.NewSession == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientID, ok := parseClientID(readCookie(r, cfg.CookieName))
			if !ok {
				clientID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    clientID,
					Path:     "/",
					Domain:   cfg.CookieDomain,
					HttpOnly: true,
					Secure:   isSecureRequest(r),
					SameSite: http.SameSiteLaxMode,
					MaxAge:   clientCookieMaxAge,
				})
				cfg.Logger.DebugContext(r.Context(), "issued client id", "client_id", clientID)
			}
			annotateClientID(r.Context(), clientID)

			queue := cfg.Storage.Notifications(clientID)
			manager := cfg.NewSession(cfg.Storage.SessionStore(clientID), queue)
			manager.Initialize(r.Context())

			ctx := SetClientScopeInContext(r.Context(), &ClientScope{
				ClientID:      clientID,
				Session:       manager,
				Notifications: queue,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func skipClientScope(path string) bool {
	return strings.HasPrefix(path, "/static/") || path == "/healthz" || path == "/favicon.ico"
}

// parseClientID accepts only canonical UUIDs so arbitrary cookie values never reach storage keys.
func parseClientID(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, notify.Notification) {}
