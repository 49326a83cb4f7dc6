package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kilianp07/ctr/core/dataset"
	"github.com/kilianp07/ctr/internal/eventbus"
)

// Config describes the survey dataset location.
type Config struct {
	// Path is a CSV file or a SQLite database.
	Path string `json:"path"`
	// Format is "csv" or "sqlite". It is inferred from the extension when empty.
	Format string `json:"format"`
	// CacheTTLSeconds bounds how long a loaded table is reused.
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Format == "" {
		switch strings.ToLower(filepath.Ext(c.Path)) {
		case ".db", ".sqlite", ".sqlite3":
			c.Format = "sqlite"
		default:
			c.Format = "csv"
		}
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 3600
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("dataset path is required")
	}
	if c.Format != "csv" && c.Format != "sqlite" {
		return fmt.Errorf("unknown dataset format %s", c.Format)
	}
	return nil
}

// TTL returns the cache lifetime.
func (c Config) TTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

// Open builds the cached source described by c.
func Open(c Config, bus eventbus.EventBus) (*CachedSource, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var src dataset.Source
	switch c.Format {
	case "sqlite":
		s, err := NewSQLiteSource(c.Path)
		if err != nil {
			return nil, err
		}
		src = s
	default:
		src = NewCSVSource(c.Path)
	}
	return NewCachedSource(src, c.TTL(), bus), nil
}
