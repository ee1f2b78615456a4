package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kjsce/kj-connect/config"
	"github.com/kjsce/kj-connect/internal/adapters/credentials"
	"github.com/kjsce/kj-connect/internal/adapters/memstore"
	redisadapter "github.com/kjsce/kj-connect/internal/adapters/redis"
	"github.com/kjsce/kj-connect/internal/data"
	httpx "github.com/kjsce/kj-connect/internal/http"
	"github.com/kjsce/kj-connect/internal/observability/statsd"
	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/kjsce/kj-connect/internal/service"
	"github.com/redis/go-redis/v9"
)

// ServiceDeps holds the infrastructure the services are built on.
// DB and Redis may be nil when the configured backends don't need them.
type ServiceDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// Services is the wired application: everything the router needs plus the metrics client to close.
type Services struct {
	Credentials *credentials.Table
	Catalog     *service.CatalogService
	Storage     ports.ClientStorage
	Guard       *service.RouteGuard
	Metrics     *statsd.Client
	NewSession  httpx.SessionFactory
}

// NewServices builds the credential table, storage, catalog and guard from config.
func NewServices(deps ServiceDeps) (*Services, error) {
	if deps.Config == nil {
		return nil, errors.New("service deps missing AppConfig")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger.With("component", "statsd"),
	})
	if err != nil {
		return nil, fmt.Errorf("create statsd client: %w", err)
	}

	table, err := BuildCredentialTable(cfg.Auth)
	if err != nil {
		return nil, err
	}

	storage, err := buildClientStorage(cfg, deps.Redis, logger)
	if err != nil {
		return nil, err
	}

	repo, err := buildCatalogRepo(cfg, deps.DB)
	if err != nil {
		return nil, err
	}
	catalogSvc, err := service.NewCatalogService(service.CatalogServiceOptions{
		Repo:        repo,
		SubmitDelay: cfg.Catalog.SubmitDelay,
		Logger:      logger.With("component", "catalog"),
		Metrics:     metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("create catalog service: %w", err)
	}

	sessionKey := cfg.Session.Key
	sessionLogger := logger.With("component", "session")
	newSession := func(store ports.SessionStore, notifier ports.Notifier) *service.SessionManager {
		return service.NewSessionManager(service.SessionManagerOptions{
			Validator: table,
			Store:     store,
			Notifier:  notifier,
			Key:       sessionKey,
			Logger:    sessionLogger,
			Metrics:   metrics,
		})
	}

	return &Services{
		Credentials: table,
		Catalog:     catalogSvc,
		Storage:     storage,
		Guard: service.NewRouteGuard(service.RouteGuardOptions{
			LoginPath: cfg.Auth.LoginPath,
			HomePath:  cfg.Auth.HomePath,
		}),
		Metrics:    metrics,
		NewSession: newSession,
	}, nil
}

// BuildCredentialTable loads the configured credential file, or the demo accounts when none is set.
func BuildCredentialTable(cfg config.AuthConfig) (*credentials.Table, error) {
	entries := credentials.DemoEntries()
	if cfg.CredentialsFile != "" {
		loaded, err := credentials.LoadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		entries = loaded
	}
	table, err := credentials.NewTable(credentials.Config{Entries: entries, Cost: cfg.BcryptCost})
	if err != nil {
		return nil, fmt.Errorf("build credential table: %w", err)
	}
	return table, nil
}

//nolint:ireturn // either backend satisfies ports.ClientStorage.
func buildClientStorage(cfg *config.AppConfig, client redis.UniversalClient, logger *slog.Logger) (ports.ClientStorage, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		if client == nil {
			return nil, errors.New("redis session backend requires a redis client")
		}
		return redisadapter.NewClientStorage(client, redisadapter.ClientStorageOptions{
			Prefix:     cfg.Session.RedisPrefix,
			SessionTTL: cfg.Session.ClientTTL,
			FlashTTL:   cfg.Session.FlashTTL,
			Logger:     logger.With("component", "redis_storage"),
		}), nil
	default:
		return memstore.NewClientStorage(cfg.Session.QueueMax, logger.With("component", "memstore")), nil
	}
}

//nolint:ireturn // either backend satisfies ports.CatalogRepository.
func buildCatalogRepo(cfg *config.AppConfig, db *sql.DB) (ports.CatalogRepository, error) {
	switch cfg.Catalog.Backend {
	case config.CatalogBackendPostgres:
		if db == nil {
			return nil, errors.New("postgres catalog backend requires a database")
		}
		return data.NewCatalogRepo(db), nil
	default:
		return data.NewSeededCatalogRepo(), nil
	}
}
