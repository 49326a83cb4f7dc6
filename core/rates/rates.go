package rates

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/ctr/core/model"
)

// Field extracts a count column from a record.
type Field func(model.SurveyRecord) int

// OptionalField extracts a value that may be missing.
type OptionalField func(model.SurveyRecord) *float64

var (
	DriveAloneTrips  Field = func(r model.SurveyRecord) int { return r.DriveAloneTrips }
	TotalWeeklyTrips Field = func(r model.SurveyRecord) int { return r.TotalWeeklyTrips }
	SurveysReturned  Field = func(r model.SurveyRecord) int { return r.SurveysReturned }
	TotalEmployees   Field = func(r model.SurveyRecord) int { return r.TotalEmployees }

	DriveAloneRate OptionalField = func(r model.SurveyRecord) *float64 { return r.DriveAloneRate }
	VMTPerEmployee OptionalField = func(r model.SurveyRecord) *float64 { return r.VMTPerEmployee }
)

// ModeField returns the count field for mode m.
func ModeField(m model.Mode) Field {
	return func(r model.SurveyRecord) int { return r.ModeTrips(m) }
}

// Sum adds f over records.
func Sum(records []model.SurveyRecord, f Field) float64 {
	vals := make([]float64, len(records))
	for i, r := range records {
		vals[i] = float64(f(r))
	}
	return floats.Sum(vals)
}

// WeightedRate returns sum(num)/sum(den) over records.
func WeightedRate(records []model.SurveyRecord, num, den Field) (float64, error) {
	d := Sum(records, den)
	if d == 0 {
		return 0, fmt.Errorf("weighted rate over %d records: zero denominator: %w", len(records), model.ErrUndefinedMetric)
	}
	return Sum(records, num) / d, nil
}

// WeightedDAR is the official drive-alone rate: drive-alone trips over total
// weekly trips.
func WeightedDAR(records []model.SurveyRecord) (float64, error) {
	return WeightedRate(records, DriveAloneTrips, TotalWeeklyTrips)
}

// Mean is an equal-weight average together with how many records were
// skipped because the value was missing.
type Mean struct {
	Value   float64
	Used    int
	Skipped int
}

// UnweightedRate averages f across records, one vote per worksite. Records
// with a missing value are skipped and counted.
func UnweightedRate(records []model.SurveyRecord, f OptionalField) (Mean, error) {
	vals := make([]float64, 0, len(records))
	for _, r := range records {
		if v := f(r); v != nil {
			vals = append(vals, *v)
		}
	}
	m := Mean{Used: len(vals), Skipped: len(records) - len(vals)}
	if len(vals) == 0 {
		return m, fmt.Errorf("unweighted rate: no values among %d records: %w", len(records), model.ErrUndefinedMetric)
	}
	m.Value = stat.Mean(vals, nil)
	return m, nil
}

// NDAT is the non-drive-alone travel rate, always derived from the weighted
// DAR.
func NDAT(weightedDAR float64) float64 { return 1 - weightedDAR }

// ResponseRate returns surveys returned over total employees.
func ResponseRate(records []model.SurveyRecord) (float64, error) {
	r, err := WeightedRate(records, SurveysReturned, TotalEmployees)
	if err != nil {
		return 0, fmt.Errorf("response rate: %w", err)
	}
	return r, nil
}
