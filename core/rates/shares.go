package rates

import (
	"fmt"
	"math"

	"github.com/kilianp07/ctr/core/model"
)

// DefaultShareTolerance is the allowed drift, in percentage points, between
// the sum of mode shares and 100.
const DefaultShareTolerance = 0.01

// ModeShare returns the share of total weekly trips made by mode m, as a
// percentage.
func ModeShare(records []model.SurveyRecord, m model.Mode) (float64, error) {
	r, err := WeightedRate(records, ModeField(m), TotalWeeklyTrips)
	if err != nil {
		return 0, fmt.Errorf("%s share: %w", m, err)
	}
	return r * 100, nil
}

// Share is one entry of a mode-share vector.
type Share struct {
	Mode    model.Mode `json:"mode"`
	Percent float64    `json:"percent"`
}

// Shares is the full mode split in model.Modes order.
type Shares struct {
	Values []Share `json:"values"`
	Total  float64 `json:"total"`
	Drift  bool    `json:"drift"`
}

// Get returns the share of mode m.
func (s Shares) Get(m model.Mode) float64 {
	for _, v := range s.Values {
		if v.Mode == m {
			return v.Percent
		}
	}
	return 0
}

// Group sums the shares of the given modes.
func (s Shares) Group(modes ...model.Mode) float64 {
	total := 0.0
	for _, m := range modes {
		total += s.Get(m)
	}
	return total
}

// ModeShares computes every mode share. Shares are not normalized: when they
// do not sum to 100 within tolerance the result is flagged as drifting, which
// points at inconsistent trip totals in the input.
func ModeShares(records []model.SurveyRecord, tolerance float64) (Shares, error) {
	var out Shares
	for _, m := range model.Modes() {
		p, err := ModeShare(records, m)
		if err != nil {
			return Shares{}, err
		}
		out.Values = append(out.Values, Share{Mode: m, Percent: p})
		out.Total += p
	}
	out.Drift = math.Abs(out.Total-100) > tolerance
	return out, nil
}
