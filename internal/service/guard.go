package service

import (
	"maps"

	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	apperrors "github.com/kjsce/kj-connect/internal/errors"
)

// Outcome is the result class of a route guard evaluation.
type Outcome string

const (
	OutcomeAllow               Outcome = "allow"
	OutcomeDenyUnauthenticated Outcome = "deny_unauthenticated"
	OutcomeDenyForbidden       Outcome = "deny_forbidden"
)

// Default redirect targets for denied navigations.
const (
	DefaultLoginPath = "/login"
	DefaultHomePath  = "/"
)

// Decision describes what to do with a navigation to a protected view.
// Redirect, Message and Err are empty when the outcome is OutcomeAllow.
type Decision struct {
	Outcome  Outcome
	Redirect string
	Message  string
	Err      error
}

// Allowed reports whether the view may render.
func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

// RouteGuardOptions configures redirect targets.
type RouteGuardOptions struct {
	LoginPath string
	HomePath  string
}

// RouteGuard decides whether an identity may reach a view with a given policy.
type RouteGuard struct {
	loginPath string
	homePath  string
}

// NewRouteGuard constructs a RouteGuard, defaulting empty paths.
func NewRouteGuard(opts RouteGuardOptions) *RouteGuard {
	g := &RouteGuard{loginPath: opts.LoginPath, homePath: opts.HomePath}
	if g.loginPath == "" {
		g.loginPath = DefaultLoginPath
	}
	if g.homePath == "" {
		g.homePath = DefaultHomePath
	}
	return g
}

// Evaluate applies policy to the identity. It is pure and must be called on every navigation.
func (g *RouteGuard) Evaluate(identity domainauth.Identity, ok bool, policy domainauth.Policy) Decision {
	if !ok {
		return Decision{
			Outcome:  OutcomeDenyUnauthenticated,
			Redirect: g.loginPath,
			Message:  apperrors.MsgUnauthorized,
			Err:      apperrors.ErrUnauthorized,
		}
	}
	if !policy.Permits(identity.Role) {
		return Decision{
			Outcome:  OutcomeDenyForbidden,
			Redirect: g.homePath,
			Message:  apperrors.MsgForbidden,
			Err:      apperrors.ErrForbidden,
		}
	}
	return Decision{Outcome: OutcomeAllow}
}

var protectedRoutes = map[string]domainauth.Policy{
	"/post-event":     domainauth.RequireRoles(domainauth.RoleCommitteeHead),
	"/post-exam-file": domainauth.RequireRoles(domainauth.RoleExamCell),
}

// ProtectedRoutes returns the views that require a policy, keyed by path.
func ProtectedRoutes() map[string]domainauth.Policy {
	return maps.Clone(protectedRoutes)
}

// PolicyFor returns the policy guarding path, if any.
func PolicyFor(path string) (domainauth.Policy, bool) {
	p, ok := protectedRoutes[path]
	return p, ok
}
