package config

import (
	"fmt"

	"github.com/kopong25/freightquick/infra/store"
)

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	// Backend selects the store type: "memory" or "postgres".
	Backend string `json:"backend"`
	// Seed loads the development fleet into a memory store at startup.
	Seed     bool                 `json:"seed"`
	Postgres store.PostgresConfig `json:"postgres"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	c.Postgres.SetDefaults()
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres store requires a dsn")
		}
		return nil
	default:
		return fmt.Errorf("unknown store backend %q", c.Backend)
	}
}
