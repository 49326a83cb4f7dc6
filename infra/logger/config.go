package logger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config selects the log level, format and an optional rotating log file.
type Config struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func (c Config) Validate() error {
	if c.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}
	switch c.Format {
	case "", FormatJSON, FormatConsole:
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}
	return nil
}
