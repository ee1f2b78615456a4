package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	kjconnect "github.com/kjsce/kj-connect"
	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/observability/statsd"
	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/kjsce/kj-connect/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Catalog    CatalogService
	Storage    ports.ClientStorage
	NewSession SessionFactory
	Guard      *service.RouteGuard
	Metrics    statsd.Sink

	// Accounts and DemoSecret feed the demo listing on the login page.
	Accounts   []domainauth.Identity
	DemoSecret string

	// TemplateFS and StaticFS override the embedded (or, in dev mode, on-disk) assets.
	TemplateFS fs.FS
	StaticFS   fs.FS

	Compression      *CompressionConfig // nil disables gzip
	CookieDomain     string
	ClientCookieName string
	IsDev            bool
	Logger           *slog.Logger
}

// NewRouter creates the HTTP handler: the route table wrapped in the middleware chain.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Catalog == nil {
		return nil, errors.New("catalog service is required")
	}
	if services.Storage == nil || services.NewSession == nil {
		return nil, errors.New("client storage and session factory are required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templateFS, err := templateFilesystem(services)
	if err != nil {
		return nil, err
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("create template renderer: %w", err)
	}
	staticFS, err := staticFilesystem(services)
	if err != nil {
		return nil, err
	}

	ui := &UIHandlers{
		T:          tr,
		Catalog:    services.Catalog,
		Accounts:   services.Accounts,
		DemoSecret: services.DemoSecret,
		IsDev:      services.IsDev,
		Logger:     logger,
	}
	api := &APIHandlers{Catalog: services.Catalog, Logger: logger}
	guard := GuardConfig{Guard: services.Guard, Metrics: services.Metrics, Logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.Handle("GET /static/", staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServerFS(staticFS)), services.IsDev))
	registerUIRoutes(mux, ui, guard)
	registerAPIRoutes(mux, api)
	// Every pattern above is more specific, so this only catches unknown paths.
	mux.HandleFunc("/", ui.NotFound)

	var handler http.Handler = mux
	handler = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(handler)
	handler = limitBody(maxFormBytes)(handler)
	handler = ClientSession(ClientSessionConfig{
		Storage:      services.Storage,
		NewSession:   services.NewSession,
		CookieName:   services.ClientCookieName,
		CookieDomain: services.CookieDomain,
		Logger:       logger,
	})(handler)
	handler = BrowserDetection()(handler)
	if services.Compression != nil {
		cfg := *services.Compression
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		handler = Compression(cfg)(handler)
	}
	handler = Logging(logger)(handler)
	return Recover(logger)(handler), nil
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, guard GuardConfig) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /events", h.Events)
	mux.HandleFunc("GET /events/{id}", h.EventDetail)
	mux.HandleFunc("POST /events/{id}/attachments/{name}/download", h.DownloadAttachment)
	mux.HandleFunc("GET /exam-cell", h.ExamCell)

	mux.Handle("GET "+PathPostEvent, protect(guard, PathPostEvent, h.PostEventForm))
	mux.Handle("POST "+PathPostEvent, protect(guard, PathPostEvent, h.PostEvent))
	mux.Handle("GET "+PathPostExamFile, protect(guard, PathPostExamFile, h.PostExamFileForm))
	mux.Handle("POST "+PathPostExamFile, protect(guard, PathPostExamFile, h.PostExamFile))
}

func registerAPIRoutes(mux *http.ServeMux, h *APIHandlers) {
	mux.HandleFunc("GET /api/session", h.Session)
	mux.HandleFunc("GET /api/events", h.ListEvents)
	mux.HandleFunc("GET /api/events/{id}", h.GetEvent)
	mux.HandleFunc("GET /api/exam-files", h.ListExamFiles)
}

// protect wraps h with the route guard when path has a declared policy.
func protect(guard GuardConfig, path string, h http.HandlerFunc) http.Handler {
	policy, ok := service.PolicyFor(path)
	if !ok {
		return h
	}
	return RequirePolicy(guard, policy)(h)
}

// templateFilesystem picks templates from disk in dev mode and from the binary otherwise.
func templateFilesystem(services RouterServices) (fs.FS, error) {
	if services.TemplateFS != nil {
		return services.TemplateFS, nil
	}
	if services.IsDev {
		return os.DirFS(TemplatePathFromRoot), nil
	}
	sub, err := fs.Sub(kjconnect.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		return nil, fmt.Errorf("open embedded templates: %w", err)
	}
	return sub, nil
}

func staticFilesystem(services RouterServices) (fs.FS, error) {
	if services.StaticFS != nil {
		return services.StaticFS, nil
	}
	if services.IsDev {
		return os.DirFS("frontend/static"), nil
	}
	sub, err := fs.Sub(kjconnect.StaticFS, "frontend/static")
	if err != nil {
		return nil, fmt.Errorf("open embedded static assets: %w", err)
	}
	return sub, nil
}

// staticWithCacheHeaders lets browsers cache embedded assets for a day; dev mode disables caching.
func staticWithCacheHeaders(handler http.Handler, isDev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=86400")
		}
		handler.ServeHTTP(w, r)
	})
}

// limitBody caps request bodies before any middleware parses a form.
func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
