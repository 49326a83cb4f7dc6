// Package summary assembles aggregate metrics, baselines, rolling targets,
// impact estimates and compliance into one report, and flattens the report
// into export rows.
package summary

import (
	"fmt"
	"time"

	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/baseline"
	"github.com/kilianp07/ctr/core/compliance"
	"github.com/kilianp07/ctr/core/impact"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/rolling"
)

// Marker records a metric that could not be computed.
type Marker struct {
	Scope  model.Scope  `json:"scope"`
	Cycle  model.Cycle  `json:"cycle"`
	Metric string       `json:"metric"`
	Reason model.Reason `json:"reason"`
	Detail string       `json:"detail,omitempty"`
}

// Warning is a data-quality flag. It never changes a computed value.
type Warning struct {
	Scope          model.Scope `json:"scope,omitempty"`
	Cycle          model.Cycle `json:"cycle,omitempty"`
	OrganizationID string      `json:"organization_id,omitempty"`
	Kind           string      `json:"kind"`
	Msg            string      `json:"msg"`
}

// WarningModeShareDrift flags mode shares that do not add up to 100.
const WarningModeShareDrift = "mode_share_drift"

// TMP is the rolling-window target of a group.
type TMP struct {
	Average   model.Value   `json:"average"`
	Target    model.Value   `json:"target"`
	Cycles    []model.Cycle `json:"cycles,omitempty"`
	Worksites int           `json:"worksites"`
}

// Impact is the extrapolated effect of the change since program start.
// Estimate is nil when the change is unavailable.
type Impact struct {
	Baseline model.Cycle      `json:"baseline,omitempty"`
	Estimate *impact.Estimate `json:"estimate,omitempty"`
	Status   model.Value      `json:"status"`
}

// Entry is the full summary of one scope and cycle.
type Entry struct {
	aggregate.Summary
	Baselines  []baseline.Reference `json:"baselines"`
	TMP        TMP                  `json:"tmp"`
	Impact     Impact               `json:"impact"`
	Compliance compliance.Status    `json:"compliance"`
}

// Baseline returns the reference of kind k.
func (e Entry) Baseline(k baseline.Kind) baseline.Reference {
	return baseline.Resolution{References: e.Baselines}.Get(k)
}

// Report is the output of Build. ID and GeneratedAt are stamped by the
// caller so that Build itself stays deterministic.
type Report struct {
	ID          string              `json:"id,omitempty"`
	GeneratedAt time.Time           `json:"generated_at,omitempty"`
	Selection   aggregate.Selection `json:"selection"`
	Entries     []Entry             `json:"entries"`
	Unavailable []Marker            `json:"unavailable"`
	Warnings    []Warning           `json:"warnings"`
}

// Build computes a report over the groups selected in t. Only an invalid
// configuration fails the call; every per-metric failure is recorded as an
// unavailable value and a marker.
func Build(t *model.Table, sel aggregate.Selection, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, fmt.Errorf("summary: %w", err)
	}
	resolver := baseline.NewResolver(t, cfg.Baseline)
	rep := Report{
		Selection:   sel,
		Entries:     []Entry{},
		Unavailable: []Marker{},
		Warnings:    []Warning{},
	}
	for _, g := range aggregate.Aggregate(t, sel) {
		e := buildEntry(t, resolver, g, cfg)
		rep.Entries = append(rep.Entries, e)
		rep.Unavailable = append(rep.Unavailable, markers(e)...)
		if e.ShareDrift {
			rep.Warnings = append(rep.Warnings, Warning{
				Scope: e.Scope, Cycle: e.Cycle, Kind: WarningModeShareDrift,
				Msg: fmt.Sprintf("mode shares sum to %.4f%%", e.ShareTotal),
			})
		}
	}
	rep.Warnings = append(rep.Warnings, issueWarnings(t, sel)...)
	return rep, nil
}

func buildEntry(t *model.Table, resolver *baseline.Resolver, g aggregate.Group, cfg Config) Entry {
	e := Entry{Summary: aggregate.Summarize(g, cfg.Aggregate)}

	res, err := resolver.Resolve(g.Scope, g.Cycle)
	if err != nil {
		for _, k := range baseline.Kinds() {
			v := model.Unavailable(err)
			e.Baselines = append(e.Baselines, baseline.Reference{Kind: k, WeightedDAR: v, UnweightedDAR: v, VMTPerEmployee: v})
		}
	} else {
		e.Baselines = res.References
	}

	tmp, err := rolling.Calculate(t, g.Scope, g.Cycle, cfg.Rolling)
	if err != nil {
		e.TMP = TMP{Average: model.Unavailable(err), Target: model.Unavailable(err)}
	} else {
		e.TMP = TMP{
			Average:   model.Available(tmp.Average),
			Target:    model.Available(tmp.Target),
			Cycles:    tmp.Cycles,
			Worksites: tmp.Worksites,
		}
	}

	e.Impact = buildImpact(e, cfg.Impact)
	e.Compliance = compliance.Evaluate(g.Records, e.WeightedDAR, cfg.Compliance)
	return e
}

func buildImpact(e Entry, c impact.Constants) Impact {
	start := e.Baseline(baseline.ProgramStart)
	out := Impact{Baseline: start.Cycle}
	change, ok := start.WeightedDAR.Get()
	if !ok {
		out.Status = start.WeightedDAR
		return out
	}
	if c.UseSurveyVMT {
		if miles, ok := e.VMTPerEmployee.Get(); ok {
			c = c.WithMiles(miles)
		}
	}
	est, err := impact.Extrapolate(-change, e.TotalEmployees, c)
	if err != nil {
		out.Status = model.Unavailable(err)
		return out
	}
	out.Estimate = &est
	out.Status = model.Available(est.AnnualVMTAvoided)
	return out
}

func markers(e Entry) []Marker {
	var out []Marker
	add := func(metric string, v model.Value) {
		if !v.Available {
			out = append(out, Marker{Scope: e.Scope, Cycle: e.Cycle, Metric: metric, Reason: v.Reason, Detail: v.Detail})
		}
	}
	for _, nv := range e.Values() {
		add(nv.Name, nv.Value)
	}
	for _, ref := range e.Baselines {
		add("change_from_"+string(ref.Kind), ref.WeightedDAR)
		add("unweighted_change_from_"+string(ref.Kind), ref.UnweightedDAR)
		add("vmt_change_from_"+string(ref.Kind), ref.VMTPerEmployee)
	}
	add("tmp_average", e.TMP.Average)
	add("impact", e.Impact.Status)
	add("share_meeting_response_threshold", e.Compliance.ShareMeetingThreshold)
	add("median_dar", e.Compliance.MedianDAR)
	return out
}

func issueWarnings(t *model.Table, sel aggregate.Selection) []Warning {
	want := map[model.Cycle]bool{}
	for _, c := range sel.Cycles {
		want[c] = true
	}
	var out []Warning
	for _, is := range t.Issues() {
		if len(want) > 0 && !want[is.Cycle] {
			continue
		}
		if !selected(sel.Geographies, is.Geography) {
			continue
		}
		out = append(out, Warning{Cycle: is.Cycle, OrganizationID: is.OrganizationID, Kind: is.Kind, Msg: is.Msg})
	}
	return out
}

// selected reports whether g falls in any of scopes. No scopes means all.
func selected(scopes []model.Scope, g model.Geography) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s.Includes(g) {
			return true
		}
	}
	return false
}
