package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kopong25/freightquick/core/dispatch"
	"github.com/kopong25/freightquick/infra/metrics"
	"github.com/kopong25/freightquick/infra/mqtt"
)

type Config struct {
	Server   ServerConfig    `json:"server"`
	Dispatch dispatch.Config `json:"dispatch"`
	Metrics  metrics.Config  `json:"metrics"`
	MQTT     MQTTConfig      `json:"mqtt"`
	Oracle   OracleConfig    `json:"oracle"`
	Store    StoreConfig     `json:"store"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr string `json:"addr"`
	// Token, when set, gates the API behind a bearer token.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// MQTTConfig wraps the notifier connection settings with an enable switch:
// a dev environment runs fine without a broker.
type MQTTConfig struct {
	Enabled     bool `json:"enabled"`
	mqtt.Config `json:",squash"`
}

// Load reads the configuration file (YAML or JSON) and applies FQ_
// environment overrides (FQ_STORE__BACKEND=postgres style).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("FQ_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fq_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies section defaults.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Dispatch.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.Config.SetDefaults()
	c.Oracle.SetDefaults()
	c.Store.SetDefaults()
}

// Validate checks section configuration.
func (c *Config) Validate() error {
	if err := c.Dispatch.Match.Validate(); err != nil {
		return err
	}
	if err := c.Oracle.Validate(); err != nil {
		return err
	}
	return c.Store.Validate()
}
