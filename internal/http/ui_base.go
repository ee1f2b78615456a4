package httpx

import (
	"context"
	"log/slog"
	"maps"
	"net/http"

	"github.com/kjsce/kj-connect/internal/async"
	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/domain/catalog"
	"github.com/kjsce/kj-connect/internal/http/ui/viewmodel"
	"github.com/kjsce/kj-connect/internal/service"
)

const errMsgUnexpected = "An unexpected error occurred. Please try again."

// CatalogService is the catalog surface the UI and JSON routes need.
type CatalogService interface {
	ListEvents(ctx context.Context, filter catalog.EventFilter) ([]catalog.Event, error)
	GetEvent(ctx context.Context, id string) (catalog.Event, error)
	ListExamFiles(ctx context.Context, filter catalog.ExamFileFilter) ([]catalog.ExamFile, error)
	Departments(ctx context.Context) ([]string, error)
	Featured(ctx context.Context) (service.Featured, error)
	PostEvent(ctx context.Context, req catalog.PostEventRequest) *async.Future[string]
	PostExamFile(ctx context.Context, req catalog.PostExamFileRequest) *async.Future[string]
}

var _ CatalogService = (*service.CatalogService)(nil)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T          *TemplateRenderer
	Catalog    CatalogService
	Accounts   []domainauth.Identity // listed on the login page
	// DemoSecret is shown next to each account; empty hides the demo listing.
	DemoSecret string
	IsDev      bool
	Logger     *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// PageMeta names a page and its titles.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// buildLayout constructs shared layout metadata from the request's client scope.
// Queued notifications are drained here so each one is shown exactly once.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       meta.Title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
	}

	if identity, ok := CurrentIdentity(r.Context()); ok {
		layout.IsAuthenticated = true
		layout.User = &viewmodel.User{
			Name:      identity.Name,
			Email:     identity.Email,
			Role:      string(identity.Role),
			RoleLabel: identity.Role.Label(),
		}
		if p, found := service.PolicyFor(PathPostEvent); found && p.Permits(identity.Role) {
			layout.CanPostEvent = true
		}
		if p, found := service.PolicyFor(PathPostExamFile); found && p.Permits(identity.Role) {
			layout.CanPostExamFile = true
		}
	}

	if scope, ok := GetClientScope(r.Context()); ok && scope.Notifications != nil {
		queued, err := scope.Notifications.Drain(r.Context())
		if err != nil {
			slog.Default().WarnContext(r.Context(), "could not drain notifications", "error", err)
		}
		layout.Toasts = viewmodel.ToastsFrom(queued)
	}

	return layout
}

// basePageData constructs the common page data map with user context.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := buildLayout(r, meta)
	data := map[string]any{
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"IsAuthenticated": layout.IsAuthenticated,
		"CanPostEvent":    layout.CanPostEvent,
		"CanPostExamFile": layout.CanPostExamFile,
		"CSRFToken":       layout.CSRFToken,
		"Toasts":          layout.Toasts,
	}
	if layout.User != nil {
		data["User"] = layout.User
	}
	return data
}

// PageSpec defines metadata and an optional fetch for page-specific data.
type PageSpec struct {
	Meta   PageMeta
	Status int
	Fetch  func(ctx context.Context, data map[string]any) error
}

// Page fetches content data, then builds the layout and renders. The layout is built
// after the fetch so notifications queued while fetching still show on this page.
func (h *UIHandlers) Page(w http.ResponseWriter, r *http.Request, spec PageSpec) {
	content := map[string]any{}
	if spec.Fetch != nil {
		if err := spec.Fetch(r.Context(), content); err != nil {
			h.logger().ErrorContext(r.Context(), "page data fetch failed",
				"page", spec.Meta.CurrentPage, "error", err)
			content["Error"] = true
			content["ErrorMessage"] = errMsgUnexpected
		}
	}
	data := basePageData(r, spec.Meta)
	maps.Copy(data, content)
	h.render(w, r, spec.Status, data)
}

func (h *UIHandlers) render(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	if err := h.T.RenderFull(w, status, data); err != nil {
		h.logAndRenderTemplateError(w, r, err)
	}
}

func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().ErrorContext(r.Context(), "template render failed",
		"path", r.URL.Path, "error", err)
	msg := "Internal Server Error"
	if h.IsDev {
		msg = err.Error()
	}
	http.Error(w, msg, http.StatusInternalServerError)
}
