package config

import "strings"

// DBConfig is the Postgres catalog connection.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"kjconnect"`
	Password string `env:"PASSWORD"                envDefault:"kjconnect"`
	Name     string `env:"NAME"                    envDefault:"kjconnect"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// Sanitize fixes out-of-range ports and unknown SSL modes.
func (d *DBConfig) Sanitize() {
	if d.Port <= 0 || d.Port > 65535 {
		d.Port = 5432
	}
	switch strings.ToLower(strings.TrimSpace(d.SSLMode)) {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		d.SSLMode = strings.ToLower(strings.TrimSpace(d.SSLMode))
	default:
		d.SSLMode = "disable"
	}
}

// RedisConfig selects a direct, sentinel or cluster Redis deployment for the session backend.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelPort       string   `env:"SENTINEL_PORT"        envDefault:"26379"` // applied to sentinel nodes listed without a port
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
