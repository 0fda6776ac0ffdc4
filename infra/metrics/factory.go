package metrics

import (
	"fmt"

	coremetrics "github.com/kopong25/freightquick/core/metrics"
	"github.com/kopong25/freightquick/infra/logger"
)

// Config selects and configures the metrics sinks.
type Config struct {
	// Sinks lists the enabled sinks: "nop", "prometheus", "influx".
	Sinks []string `json:"sinks" koanf:"sinks"`
	// PrometheusPort is where Serve exposes /metrics.
	PrometheusPort int    `json:"prometheus_port" koanf:"prometheus_port"`
	InfluxURL      string `json:"influx_url" koanf:"influx_url"`
	InfluxToken    string `json:"influx_token" koanf:"influx_token"`
	InfluxOrg      string `json:"influx_org" koanf:"influx_org"`
	InfluxBucket   string `json:"influx_bucket" koanf:"influx_bucket"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if len(c.Sinks) == 0 {
		c.Sinks = []string{"nop"}
	}
	if c.PrometheusPort == 0 {
		c.PrometheusPort = 9090
	}
}

// NewSink builds the configured sinks and wraps them in a MultiSink.
func NewSink(cfg Config, log logger.Logger) (coremetrics.MetricsSink, error) {
	cfg.SetDefaults()
	sinks := make([]coremetrics.MetricsSink, 0, len(cfg.Sinks))
	for _, name := range cfg.Sinks {
		switch name {
		case "nop":
			sinks = append(sinks, coremetrics.NopSink{})
		case "prometheus":
			s, err := NewPromSink()
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s)
		case "influx":
			sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
		default:
			return nil, fmt.Errorf("metrics: unknown sink %q", name)
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	log.Infof("metrics: %d sinks enabled", len(sinks))
	return NewMultiSink(sinks...), nil
}
