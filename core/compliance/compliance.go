// Package compliance reports survey response compliance, goal attainment and
// worksite rankings for a group of records.
package compliance

import (
	"fmt"
	"sort"

	"github.com/kilianp07/ctr/core/model"
)

// Config holds the compliance thresholds.
type Config struct {
	ResponseThreshold float64 `json:"response_threshold"`
	DARGoal           float64 `json:"dar_goal"`
	TopN              int     `json:"top_n"`
}

// DefaultConfig returns a 50% response threshold, a 40% DAR goal and 15
// worksites per ranking.
func DefaultConfig() Config {
	return Config{ResponseThreshold: 0.50, DARGoal: 0.40, TopN: 15}
}

// Validate checks thresholds are rates.
func (c Config) Validate() error {
	if c.ResponseThreshold < 0 || c.ResponseThreshold > 1 {
		return fmt.Errorf("compliance: response_threshold %v outside [0,1]", c.ResponseThreshold)
	}
	if c.DARGoal < 0 || c.DARGoal > 1 {
		return fmt.Errorf("compliance: dar_goal %v outside [0,1]", c.DARGoal)
	}
	if c.TopN < 0 {
		return fmt.Errorf("compliance: negative top_n %d", c.TopN)
	}
	return nil
}

// Status is the compliance picture of one group.
type Status struct {
	Sites                 int         `json:"sites"`
	SitesMeetingThreshold int         `json:"sites_meeting_threshold"`
	ShareMeetingThreshold model.Value `json:"share_meeting_threshold"`
	GoalGap               model.Value `json:"goal_gap"`
	GoalMet               bool        `json:"goal_met"`
	MedianDAR             model.Value `json:"median_dar"`
}

// Evaluate counts the sites at or above the response threshold, compares the
// weighted DAR with the goal and takes the median worksite DAR.
func Evaluate(records []model.SurveyRecord, weightedDAR model.Value, cfg Config) Status {
	st := Status{Sites: len(records)}
	for _, r := range records {
		if r.ResponseRate != nil && *r.ResponseRate >= cfg.ResponseThreshold {
			st.SitesMeetingThreshold++
		}
	}
	if st.Sites == 0 {
		st.ShareMeetingThreshold = model.Unavailable(fmt.Errorf("compliance: no sites: %w", model.ErrUndefinedMetric))
	} else {
		st.ShareMeetingThreshold = model.Available(float64(st.SitesMeetingThreshold) / float64(st.Sites))
	}
	if dar, ok := weightedDAR.Get(); ok {
		st.GoalGap = model.Available(dar - cfg.DARGoal)
		st.GoalMet = dar <= cfg.DARGoal
	} else {
		st.GoalGap = weightedDAR
	}
	st.MedianDAR = model.ValueOf(Median(records))
	return st
}

// Median returns the median worksite drive-alone rate, averaging the two
// middle values for even counts. Sites without a rate are ignored.
func Median(records []model.SurveyRecord) (float64, error) {
	vals := make([]float64, 0, len(records))
	for _, r := range records {
		if r.DriveAloneRate != nil {
			vals = append(vals, *r.DriveAloneRate)
		}
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("median dar: %w", model.ErrUndefinedMetric)
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid], nil
	}
	return (vals[mid-1] + vals[mid]) / 2, nil
}

// Worksite is one entry of a ranking.
type Worksite struct {
	OrganizationID string          `json:"organization_id"`
	Geography      model.Geography `json:"geography"`
	DriveAloneRate float64         `json:"drive_alone_rate"`
	TotalEmployees int             `json:"total_employees"`
	ResponseRate   *float64        `json:"response_rate,omitempty"`
}

// Ranking lists the best and worst worksites of a scope and cycle.
type Ranking struct {
	Scope   model.Scope `json:"scope"`
	Cycle   model.Cycle `json:"cycle"`
	Lowest  []Worksite  `json:"lowest"`
	Highest []Worksite  `json:"highest"`
}

// Rank returns up to n worksites with the lowest and the highest DAR in scope
// and cycle. Ties are broken by organization id, then geography.
func Rank(t *model.Table, scope model.Scope, cycle model.Cycle, n int) Ranking {
	var sites []Worksite
	for _, r := range t.Select(scope, cycle) {
		if r.DriveAloneRate == nil {
			continue
		}
		sites = append(sites, Worksite{
			OrganizationID: r.OrganizationID,
			Geography:      r.Geography,
			DriveAloneRate: *r.DriveAloneRate,
			TotalEmployees: r.TotalEmployees,
			ResponseRate:   r.ResponseRate,
		})
	}
	byKey := func(a, b Worksite) bool {
		if a.OrganizationID != b.OrganizationID {
			return a.OrganizationID < b.OrganizationID
		}
		return a.Geography < b.Geography
	}
	res := Ranking{Scope: scope, Cycle: cycle}
	sort.SliceStable(sites, func(i, j int) bool {
		if sites[i].DriveAloneRate != sites[j].DriveAloneRate {
			return sites[i].DriveAloneRate < sites[j].DriveAloneRate
		}
		return byKey(sites[i], sites[j])
	})
	res.Lowest = head(sites, n)
	sort.SliceStable(sites, func(i, j int) bool {
		if sites[i].DriveAloneRate != sites[j].DriveAloneRate {
			return sites[i].DriveAloneRate > sites[j].DriveAloneRate
		}
		return byKey(sites[i], sites[j])
	})
	res.Highest = head(sites, n)
	return res
}

func head(ws []Worksite, n int) []Worksite {
	if n < 0 || n > len(ws) {
		n = len(ws)
	}
	return append([]Worksite{}, ws[:n]...)
}
