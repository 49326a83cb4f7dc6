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

	"github.com/kilianp07/ctr/core/audit"
	"github.com/kilianp07/ctr/core/metrics"
	"github.com/kilianp07/ctr/core/summary"
	"github.com/kilianp07/ctr/infra/dataset"
	"github.com/kilianp07/ctr/infra/logger"
	"github.com/kilianp07/ctr/infra/monitoring"
	"github.com/kilianp07/ctr/infra/mqtt"
)

type Config struct {
	Dataset  dataset.Config    `json:"dataset"`
	Summary  summary.Config    `json:"summary"`
	Metrics  metrics.Config    `json:"metrics"`
	Audit    audit.Config      `json:"audit"`
	API      APIConfig         `json:"api"`
	MQTT     mqtt.Config       `json:"mqtt"`
	Snapshot SnapshotConfig    `json:"snapshot"`
	Sentry   monitoring.Config `json:"sentry"`
	Log      logger.Config     `json:"log"`
}

// Default returns a configuration carrying the protocol constants. Load
// overlays the file and the environment on top of it.
func Default() Config {
	return Config{Summary: summary.DefaultConfig()}
}

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
	// Optional environment overrides: K_DATASET__PATH sets dataset.path.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Dataset.SetDefaults()
	c.Audit.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Dataset.Validate(); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if err := c.Summary.Validate(); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.Audit.Validate(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if c.Snapshot.Enabled && c.MQTT.Broker == "" && len(c.Metrics.Sinks) == 0 {
		return fmt.Errorf("snapshot: enabled without an mqtt broker or metrics sink")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return c.Sentry.Validate()
}
