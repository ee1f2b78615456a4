package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/kjsce/kj-connect/config"
	"github.com/kjsce/kj-connect/internal/adapters/credentials"
	httpx "github.com/kjsce/kj-connect/internal/http"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *Services
	Logger   *slog.Logger

	// TemplateFS and StaticFS override the embedded assets; tests point them at the source tree.
	TemplateFS fs.FS
	StaticFS   fs.FS
}

// BuildHTTPHandler wires the router with the configured services and middleware.
func BuildHTTPHandler(cfg HTTPServerConfig) (http.Handler, error) {
	if cfg.Config == nil || cfg.Services == nil {
		return nil, errors.New("http server config requires AppConfig and Services")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	var compression *httpx.CompressionConfig
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		compression = &httpx.CompressionConfig{
			Level:   appCfg.HTTP.CompressionLevel,
			MinSize: appCfg.HTTP.CompressionMinSize,
		}
	}

	services := httpx.RouterServices{
		Catalog:          cfg.Services.Catalog,
		Storage:          cfg.Services.Storage,
		NewSession:       cfg.Services.NewSession,
		Guard:            cfg.Services.Guard,
		Metrics:          cfg.Services.Metrics,
		TemplateFS:       cfg.TemplateFS,
		StaticFS:         cfg.StaticFS,
		Compression:      compression,
		CookieDomain:     appCfg.HTTP.CookieDomain,
		ClientCookieName: appCfg.Session.ClientCookie,
		IsDev:            appCfg.IsDev,
		Logger:           logger,
	}
	// The shared demo password is only meaningful for the built-in table.
	if appCfg.Auth.ShowDemoAccounts && appCfg.Auth.CredentialsFile == "" {
		services.Accounts = cfg.Services.Credentials.Accounts()
		services.DemoSecret = credentials.DemoSecret
	}

	handler, err := httpx.NewRouter(services)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}
	return handler, nil
}

// NewHTTPServer applies the configured timeouts to a server for handler.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	addr := cfg.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// ServeConfig groups inputs for Serve.
type ServeConfig struct {
	Server          *http.Server
	Listener        net.Listener // optional; Server.Addr is used when nil
	ShutdownTimeout time.Duration // defaults to 10s
	Logger          *slog.Logger
}

// Serve runs the server until ctx is canceled, then shuts it down gracefully.
// A listener failure is returned; a clean shutdown returns nil.
func Serve(ctx context.Context, cfg ServeConfig) error {
	if cfg.Server == nil {
		return errors.New("serve requires a server")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", cfg.Server.Addr)
		var err error
		if cfg.Listener != nil {
			err = cfg.Server.Serve(cfg.Listener)
		} else {
			err = cfg.Server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdownHTTPServer(cfg.Server, cfg.ShutdownTimeout, logger)
	})
	return g.Wait()
}

func shutdownHTTPServer(server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	logger.Info("shutting down HTTP server")
	// The parent context is already done; shutdown gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
