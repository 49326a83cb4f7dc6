package metrics

import (
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/summary"
)

// Point is one available metric of a report entry.
type Point struct {
	Scope  model.Scope
	Cycle  model.Cycle
	Metric string
	Value  float64
}

// Points flattens the available metrics of every entry of r. Unavailable
// values are left out; sinks never receive substituted zeros.
func Points(r summary.Report) []Point {
	var out []Point
	for _, e := range r.Entries {
		add := func(name string, v model.Value) {
			if f, ok := v.Get(); ok {
				out = append(out, Point{Scope: e.Scope, Cycle: e.Cycle, Metric: name, Value: f})
			}
		}
		add("worksites", model.Available(float64(e.Worksites)))
		add("total_employees", model.Available(float64(e.TotalEmployees)))
		add("total_weekly_trips", model.Available(float64(e.TotalWeeklyTrips)))
		for _, nv := range e.Values() {
			add(nv.Name, nv.Value)
		}
		for _, ref := range e.Baselines {
			add("change_from_"+string(ref.Kind), ref.WeightedDAR)
		}
		add("tmp_average", e.TMP.Average)
		add("tmp_target", e.TMP.Target)
		if est := e.Impact.Estimate; est != nil {
			add("annual_trips_avoided", model.Available(est.AnnualTripsAvoided))
			add("annual_vmt_avoided", model.Available(est.AnnualVMTAvoided))
			add("fuel_gallons_saved", model.Available(est.FuelGallonsSaved))
			add("annual_co2_kg_avoided", model.Available(est.CO2KgAvoided))
		}
		add("share_meeting_response_threshold", e.Compliance.ShareMeetingThreshold)
		add("median_dar", e.Compliance.MedianDAR)
	}
	return out
}

// Unavailable counts the unavailable markers of r by scope, metric and
// reason.
func Unavailable(r summary.Report) map[[3]string]int {
	out := map[[3]string]int{}
	for _, m := range r.Unavailable {
		out[[3]string{string(m.Scope), m.Metric, string(m.Reason)}]++
	}
	return out
}
