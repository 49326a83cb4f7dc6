package summary

import (
	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/baseline"
	"github.com/kilianp07/ctr/core/compliance"
	"github.com/kilianp07/ctr/core/impact"
	"github.com/kilianp07/ctr/core/rolling"
)

// Config gathers every tunable of a report. It is passed explicitly on each
// Build call.
type Config struct {
	Aggregate  aggregate.Config  `json:"aggregate"`
	Baseline   baseline.Config   `json:"baseline"`
	Rolling    rolling.Config    `json:"rolling"`
	Impact     impact.Constants  `json:"impact"`
	Compliance compliance.Config `json:"compliance"`
}

// DefaultConfig returns the protocol defaults.
func DefaultConfig() Config {
	return Config{
		Aggregate:  aggregate.DefaultConfig(),
		Baseline:   baseline.DefaultConfig(),
		Rolling:    rolling.DefaultConfig(),
		Impact:     impact.DefaultConstants(),
		Compliance: compliance.DefaultConfig(),
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Baseline.Validate(); err != nil {
		return err
	}
	if err := c.Rolling.Validate(); err != nil {
		return err
	}
	if err := c.Impact.Validate(); err != nil {
		return err
	}
	return c.Compliance.Validate()
}
