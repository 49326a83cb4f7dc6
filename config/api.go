package config

import "fmt"

// APIConfig holds the HTTP API settings.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token enables bearer authentication when set.
	Token              string   `json:"token"`
	CORSOrigins        []string `json:"cors_origins"`
	ReadTimeoutSeconds int      `json:"read_timeout_seconds"`
	// DefaultRankingLimit caps /api/worksites when no limit is given.
	DefaultRankingLimit int `json:"default_ranking_limit"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = 15
	}
	if c.DefaultRankingLimit == 0 {
		c.DefaultRankingLimit = 15
	}
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	if c.ReadTimeoutSeconds < 0 || c.DefaultRankingLimit < 0 {
		return fmt.Errorf("timeouts and limits must not be negative")
	}
	return nil
}
