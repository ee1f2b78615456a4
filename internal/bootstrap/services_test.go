package bootstrap

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/kjsce/kj-connect/config"
	"github.com/kjsce/kj-connect/internal/adapters/credentials"
	"github.com/kjsce/kj-connect/internal/adapters/memstore"
	redisadapter "github.com/kjsce/kj-connect/internal/adapters/redis"
	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns sanitized defaults with a cheap bcrypt cost and no submit delay.
func testConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.Auth.BcryptCost = 4
	cfg.HTTP.CompressionEnabled = true
	cfg.HTTP.CompressionLevel = -1
	cfg.Auth.ShowDemoAccounts = true
	cfg.Sanitize()
	return cfg
}

func TestNewServices_MemoryBackends(t *testing.T) {
	cfg := testConfig()

	services, err := NewServices(ServiceDeps{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)

	assert.IsType(t, &memstore.ClientStorage{}, services.Storage)
	assert.False(t, services.Metrics.Enabled())
	assert.Len(t, services.Credentials.Accounts(), 3)

	events, err := services.Catalog.ListEvents(context.Background(), catalog.EventFilter{Type: catalog.FilterAll})
	require.NoError(t, err)
	assert.Len(t, events, 3)

	decision := services.Guard.Evaluate(domainauth.Identity{}, false, domainauth.RequireRoles(domainauth.RoleExamCell))
	assert.Equal(t, "/login", decision.Redirect)
}

func TestNewServices_SessionFactoryLogsIn(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Key = "custom-key"

	services, err := NewServices(ServiceDeps{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)

	ctx := context.Background()
	store := services.Storage.SessionStore("client-1")
	manager := services.NewSession(store, services.Storage.Notifications("client-1"))
	manager.Initialize(ctx)

	require.True(t, manager.Login(ctx, "student@somaiya.edu", credentials.DemoSecret))

	raw, err := store.Get(ctx, "custom-key")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "student@somaiya.edu")
}

func TestNewServices_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	cfg.Session.Backend = config.SessionBackendRedis

	services, err := NewServices(ServiceDeps{Config: cfg, Redis: client, Logger: discardLogger()})
	require.NoError(t, err)
	require.IsType(t, &redisadapter.ClientStorage{}, services.Storage)

	ctx := context.Background()
	require.NoError(t, services.Storage.SessionStore("abc").Set(ctx, cfg.Session.Key, []byte("{}")))
	assert.True(t, mr.Exists(redisadapter.DefaultPrefix+"abc:slot:"+cfg.Session.Key))
}

func TestNewServices_MissingInfrastructure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.AppConfig)
		want   string
	}{
		{
			name:   "redis sessions without client",
			mutate: func(c *config.AppConfig) { c.Session.Backend = config.SessionBackendRedis },
			want:   "redis client",
		},
		{
			name:   "postgres catalog without database",
			mutate: func(c *config.AppConfig) { c.Catalog.Backend = config.CatalogBackendPostgres },
			want:   "database",
		},
		{
			name:   "unreadable credentials file",
			mutate: func(c *config.AppConfig) { c.Auth.CredentialsFile = "/nonexistent/users.json" },
			want:   "read credentials file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := NewServices(ServiceDeps{Config: cfg, Logger: discardLogger()})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := NewServices(ServiceDeps{})
	require.Error(t, err)
}

func TestBuildCredentialTable_FromFile(t *testing.T) {
	hash, err := credentials.HashSecret("s3cret", 4)
	require.NoError(t, err)
	entries := []credentials.Entry{
		{ID: "10", Name: "Dean", Email: "dean@somaiya.edu", Secret: hash, Hashed: true, Role: domainauth.RoleExamCell},
		{ID: "11", Name: "Club Lead", Email: "club@somaiya.edu", Secret: "plain", Role: domainauth.RoleCommitteeHead},
	}
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	table, err := BuildCredentialTable(config.AuthConfig{CredentialsFile: path, BcryptCost: 4})
	require.NoError(t, err)

	identity, err := table.Validate(context.Background(), "dean@somaiya.edu", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleExamCell, identity.Role)

	_, err = table.Validate(context.Background(), "club@somaiya.edu", "plain")
	require.NoError(t, err)

	_, err = table.Validate(context.Background(), "student@somaiya.edu", credentials.DemoSecret)
	require.Error(t, err)
}
