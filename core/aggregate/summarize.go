package aggregate

import (
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/rates"
)

// Config holds the tolerances used by Summarize.
type Config struct {
	ShareTolerance float64 `json:"share_tolerance"`
}

// DefaultConfig returns the protocol tolerances.
func DefaultConfig() Config {
	return Config{ShareTolerance: rates.DefaultShareTolerance}
}

// ModeShare is one mode's share of weekly trips, in percent.
type ModeShare struct {
	Mode  model.Mode  `json:"mode"`
	Share model.Value `json:"share"`
}

// Summary holds the primitive metrics of one group.
type Summary struct {
	Scope            model.Scope `json:"scope"`
	Cycle            model.Cycle `json:"cycle"`
	Worksites        int         `json:"worksites"`
	TotalEmployees   int         `json:"total_employees"`
	TotalWeeklyTrips int         `json:"total_weekly_trips"`

	WeightedDAR   model.Value `json:"weighted_dar"`
	UnweightedDAR model.Value `json:"unweighted_dar"`
	NDAT          model.Value `json:"ndat"`

	ModeShares     []ModeShare `json:"mode_shares"`
	ShareTotal     float64     `json:"share_total"`
	ShareDrift     bool        `json:"share_drift"`
	TransitShare   model.Value `json:"transit_share"`
	RideshareShare model.Value `json:"rideshare_share"`
	ActiveShare    model.Value `json:"active_share"`
	TeleworkShare  model.Value `json:"telework_share"`

	ResponseRate   model.Value `json:"response_rate"`
	VMTPerEmployee model.Value `json:"vmt_per_employee"`
	DATripsPerDay  model.Value `json:"da_trips_per_day"`

	SkippedDARRecords int `json:"skipped_dar_records"`
	SkippedVMTRecords int `json:"skipped_vmt_records"`
}

// Share returns the share of mode m.
func (s Summary) Share(m model.Mode) model.Value {
	for _, v := range s.ModeShares {
		if v.Mode == m {
			return v.Share
		}
	}
	return model.Unavailable(model.ErrUndefinedMetric)
}

// NamedValue pairs a metric name with its value.
type NamedValue struct {
	Name  string
	Value model.Value
}

// Values lists every scalar metric of the summary in a fixed order.
func (s Summary) Values() []NamedValue {
	out := []NamedValue{
		{"weighted_dar", s.WeightedDAR},
		{"unweighted_dar", s.UnweightedDAR},
		{"ndat", s.NDAT},
	}
	for _, m := range s.ModeShares {
		out = append(out, NamedValue{"share_" + m.Mode.String(), m.Share})
	}
	return append(out,
		NamedValue{"transit_share", s.TransitShare},
		NamedValue{"rideshare_share", s.RideshareShare},
		NamedValue{"active_share", s.ActiveShare},
		NamedValue{"telework_share", s.TeleworkShare},
		NamedValue{"response_rate", s.ResponseRate},
		NamedValue{"vmt_per_employee", s.VMTPerEmployee},
		NamedValue{"da_trips_per_day", s.DATripsPerDay},
	)
}

// Summarize applies every primitive to g. A failing primitive yields an
// unavailable value; it never aborts the others.
func Summarize(g Group, cfg Config) Summary {
	recs := g.Records
	s := Summary{
		Scope:            g.Scope,
		Cycle:            g.Cycle,
		Worksites:        len(recs),
		TotalEmployees:   int(rates.Sum(recs, rates.TotalEmployees)),
		TotalWeeklyTrips: int(rates.Sum(recs, rates.TotalWeeklyTrips)),
	}

	s.WeightedDAR = model.ValueOf(rates.WeightedDAR(recs))
	if dar, ok := s.WeightedDAR.Get(); ok {
		s.NDAT = model.Available(rates.NDAT(dar))
		s.DATripsPerDay = model.Available(float64(s.TotalEmployees) * dar)
	} else {
		s.NDAT = s.WeightedDAR
		s.DATripsPerDay = s.WeightedDAR
	}

	mean, err := rates.UnweightedRate(recs, rates.DriveAloneRate)
	s.UnweightedDAR = model.ValueOf(mean.Value, err)
	s.SkippedDARRecords = mean.Skipped

	vmt, err := rates.UnweightedRate(recs, rates.VMTPerEmployee)
	s.VMTPerEmployee = model.ValueOf(vmt.Value, err)
	s.SkippedVMTRecords = vmt.Skipped

	s.ResponseRate = model.ValueOf(rates.ResponseRate(recs))

	shares, err := rates.ModeShares(recs, cfg.ShareTolerance)
	for _, m := range model.Modes() {
		v := model.Unavailable(err)
		if err == nil {
			v = model.Available(shares.Get(m))
		}
		s.ModeShares = append(s.ModeShares, ModeShare{Mode: m, Share: v})
	}
	group := func(modes ...model.Mode) model.Value {
		if err != nil {
			return model.Unavailable(err)
		}
		return model.Available(shares.Group(modes...))
	}
	s.TransitShare = group(model.ModeBus, model.ModeTrain)
	s.RideshareShare = group(model.ModeCarpool, model.ModeVanpool)
	s.ActiveShare = group(model.ModeWalk, model.ModeBike)
	s.TeleworkShare = group(model.ModeTelework)
	s.ShareTotal = shares.Total
	s.ShareDrift = shares.Drift
	return s
}

// SummarizeAll summarizes each group in order.
func SummarizeAll(groups []Group, cfg Config) []Summary {
	out := make([]Summary, 0, len(groups))
	for _, g := range groups {
		out = append(out, Summarize(g, cfg))
	}
	return out
}
