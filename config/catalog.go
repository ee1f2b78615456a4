package config

import (
	"fmt"
	"strings"
	"time"
)

// CatalogBackend selects where events and exam files are stored.
type CatalogBackend string

const (
	// CatalogBackendMemory serves the seeded in-process catalog.
	CatalogBackendMemory CatalogBackend = "memory"
	// CatalogBackendPostgres persists the catalog in Postgres.
	CatalogBackendPostgres CatalogBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for CatalogBackend.
func (b *CatalogBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "postgres":
		*b = CatalogBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid CatalogBackend: %q (valid options: memory, postgres)", v)
	}
}

// CatalogConfig controls the catalog repository and submission pacing.
type CatalogConfig struct {
	Backend CatalogBackend `env:"CATALOG_BACKEND" envDefault:"memory"`

	// SubmitDelay is the simulated processing time before a posting is stored.
	SubmitDelay time.Duration `env:"CATALOG_SUBMIT_DELAY" envDefault:"1s"`
}

// Sanitize restores defaults for blank or negative values.
func (c *CatalogConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = CatalogBackendMemory
	}
	if c.SubmitDelay < 0 {
		c.SubmitDelay = 0
	}
}
