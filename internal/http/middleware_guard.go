package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/domain/notify"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
	"github.com/kjsce/kj-connect/internal/observability/metrics"
	"github.com/kjsce/kj-connect/internal/observability/statsd"
	"github.com/kjsce/kj-connect/internal/service"
)

// GuardConfig groups what RequirePolicy needs besides the policy itself.
type GuardConfig struct {
	Guard   *service.RouteGuard
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// RequirePolicy evaluates the route guard on every request before the wrapped handler runs.
// Browsers that are denied are redirected with an error notification queued for the
// next page; JSON clients get 401 or 403.
func RequirePolicy(cfg GuardConfig, policy domainauth.Policy) func(http.Handler) http.Handler {
	if cfg.Guard == nil {
		cfg.Guard = service.NewRouteGuard(service.RouteGuardOptions{})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := CurrentIdentity(r.Context())
			decision := cfg.Guard.Evaluate(identity, ok, policy)
			metrics.EmitGuardDecision(cfg.Metrics, string(decision.Outcome), r.URL.Path)

			if decision.Allowed() {
				next.ServeHTTP(w, r)
				return
			}

			cfg.Logger.InfoContext(r.Context(), "route guard denied navigation",
				"path", r.URL.Path,
				"outcome", decision.Outcome,
				"role", identity.Role,
			)

			if !IsBrowserRequest(r) {
				status := http.StatusForbidden
				if decision.Outcome == service.OutcomeDenyUnauthenticated {
					status = http.StatusUnauthorized
				}
				WriteError(w, ErrorParams{
					Code:    status,
					ErrCode: string(apperrors.GetCode(decision.Err)),
					Err:     decision.Err,
				})
				return
			}

			notifier(r.Context()).Notify(r.Context(), notify.Error(decision.Message))
			http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
		})
	}
}
