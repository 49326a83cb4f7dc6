// Package rolling computes the multi-cycle average behind the Transportation
// Management Program zone targets.
package rolling

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/rates"
)

// Config holds the window size, the worksite floor and the reduction applied
// to derive a target.
type Config struct {
	Window          int     `json:"window"`
	MinWorksites    int     `json:"min_worksites"`
	TargetReduction float64 `json:"target_reduction"`
}

// DefaultConfig returns the three-cycle window with a 5% target reduction.
func DefaultConfig() Config {
	return Config{Window: 3, MinWorksites: 3, TargetReduction: 0.05}
}

// Validate rejects windows that cannot produce a result.
func (c Config) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("rolling: window must be positive, got %d", c.Window)
	}
	if c.MinWorksites < 1 {
		return fmt.Errorf("rolling: min_worksites must be positive, got %d", c.MinWorksites)
	}
	if c.TargetReduction < 0 || c.TargetReduction >= 1 {
		return fmt.Errorf("rolling: target_reduction must be in [0,1), got %v", c.TargetReduction)
	}
	return nil
}

// Result is a rolling average and the target derived from it.
type Result struct {
	Scope     model.Scope   `json:"scope"`
	AsOf      model.Cycle   `json:"as_of"`
	Average   float64       `json:"average"`
	Target    float64       `json:"target"`
	Cycles    []model.Cycle `json:"cycles"`
	Worksites int           `json:"worksites"`
}

// Calculate averages the per-cycle unweighted DAR of the cfg.Window most
// recent cycles of scope at or before asOf. The window must hold cfg.Window
// cycles and at least cfg.MinWorksites distinct organizations reporting a
// drive-alone rate, and each cycle needs a defined unweighted DAR.
func Calculate(t *model.Table, scope model.Scope, asOf model.Cycle, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	var eligible []model.Cycle
	for _, c := range t.ScopeCycles(scope) {
		if model.CompareCycles(c, asOf) <= 0 {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) < cfg.Window {
		return Result{}, fmt.Errorf("rolling %s as of %s: %w", scope, asOf,
			&model.InsufficientDataError{What: "cycles", Floor: cfg.Window, Got: len(eligible)})
	}
	window := eligible[len(eligible)-cfg.Window:]

	// Only worksites reporting a drive-alone rate count toward the floor.
	orgs := map[string]bool{}
	perCycle := make([][]model.SurveyRecord, len(window))
	for i, c := range window {
		perCycle[i] = t.Select(scope, c)
		for _, r := range perCycle[i] {
			if r.DriveAloneRate != nil {
				orgs[r.OrganizationID] = true
			}
		}
	}
	if len(orgs) < cfg.MinWorksites {
		return Result{}, fmt.Errorf("rolling %s as of %s: %w", scope, asOf,
			&model.InsufficientDataError{What: "worksites", Floor: cfg.MinWorksites, Got: len(orgs)})
	}
	means := make([]float64, 0, len(window))
	for i, recs := range perCycle {
		m, err := rates.UnweightedRate(recs, rates.DriveAloneRate)
		if err != nil {
			return Result{}, fmt.Errorf("rolling %s as of %s: cycle %s: %w", scope, asOf, window[i], err)
		}
		means = append(means, m.Value)
	}
	avg := stat.Mean(means, nil)
	return Result{
		Scope:     scope,
		AsOf:      asOf,
		Average:   avg,
		Target:    avg * (1 - cfg.TargetReduction),
		Cycles:    append([]model.Cycle(nil), window...),
		Worksites: len(orgs),
	}, nil
}
