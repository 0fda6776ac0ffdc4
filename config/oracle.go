package config

import (
	"fmt"

	"github.com/kopong25/freightquick/infra/oracle"
)

// OracleConfig selects and configures the distance oracle stack.
type OracleConfig struct {
	// Provider selects the base oracle: "matrix" (configured lanes with
	// haversine fallback) or "haversine".
	Provider  string                 `json:"provider"`
	Legs      []oracle.Leg           `json:"legs"`
	Haversine oracle.HaversineConfig `json:"haversine"`
	Cache     OracleCacheConfig      `json:"cache"`
}

// OracleCacheConfig wraps the Redis leg cache with an enable switch.
type OracleCacheConfig struct {
	Enabled            bool `json:"enabled"`
	oracle.CacheConfig `json:",squash"`
}

// SetDefaults applies sane defaults.
func (c *OracleConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "matrix"
	}
	c.Haversine.SetDefaults()
	c.Cache.CacheConfig.SetDefaults()
}

// Validate checks the provider selection.
func (c OracleConfig) Validate() error {
	switch c.Provider {
	case "matrix", "haversine":
		return nil
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Provider)
	}
}
