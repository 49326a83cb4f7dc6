package scenarios

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/ctr/core/dataset"
	coremetrics "github.com/kilianp07/ctr/core/metrics"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/report"
	"github.com/kilianp07/ctr/core/summary"
	"github.com/kilianp07/ctr/infra/metrics"
)

const tolerance = 1e-9

func RunScenario(t *testing.T, sc *Scenario) {
	records := make([]model.SurveyRecord, len(sc.Records))
	for i, def := range sc.Records {
		r, err := def.ToModel()
		if err != nil {
			t.Fatalf("record %d: %v", i+1, err)
		}
		records[i] = r
	}
	src, err := dataset.FromRecords(sc.Name, records)
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	sel, err := sc.Selection.ToModel()
	if err != nil {
		t.Fatalf("selection: %v", err)
	}

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	eng, err := report.NewEngine(src, summary.DefaultConfig())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	rep, err := eng.Build(context.Background(), sel, report.TriggerCLI)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := sink.RecordSummary(coremetrics.SummaryEvent{ReportID: rep.ID, Report: rep}); err != nil {
		t.Fatalf("record: %v", err)
	}
	gauges := gather(t, reg)

	for _, exp := range sc.Expected {
		key := [2]string{exp.Scope, exp.Cycle}
		entry, ok := findEntry(rep, exp.Scope, exp.Cycle)
		if !ok {
			t.Errorf("scenario %s: no entry for %v", sc.Name, key)
			continue
		}
		for metric, want := range exp.Metrics {
			got, ok := gauges[[3]string{exp.Scope, exp.Cycle, metric}]
			if !ok {
				t.Errorf("scenario %s: %v %s not exported", sc.Name, key, metric)
				continue
			}
			if math.Abs(got-want) > tolerance {
				t.Errorf("scenario %s: %v %s expected %v, got %v", sc.Name, key, metric, want, got)
			}
		}
		for metric, reason := range exp.Unavailable {
			m, ok := findMarker(rep, exp.Scope, exp.Cycle, metric)
			if !ok {
				t.Errorf("scenario %s: %v %s expected unavailable", sc.Name, key, metric)
				continue
			}
			if string(m.Reason) != reason {
				t.Errorf("scenario %s: %v %s expected %s, got %s", sc.Name, key, metric, reason, m.Reason)
			}
		}
		for kind, cycle := range exp.Baselines {
			if got := baselineCycle(entry, kind); string(got) != cycle {
				t.Errorf("scenario %s: %v %s baseline expected %q, got %q", sc.Name, key, kind, cycle, got)
			}
		}
	}
}

// gather indexes the ctr_metric_value gauges by scope, cycle and metric.
func gather(t *testing.T, reg *prometheus.Registry) map[[3]string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := map[[3]string]float64{}
	for _, mf := range families {
		if mf.GetName() != "ctr_metric_value" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			out[[3]string{labels["scope"], labels["cycle"], labels["metric"]}] = m.GetGauge().GetValue()
		}
	}
	return out
}

func findEntry(rep summary.Report, scope, cycle string) (summary.Entry, bool) {
	for _, e := range rep.Entries {
		if string(e.Scope) == scope && string(e.Cycle) == cycle {
			return e, true
		}
	}
	return summary.Entry{}, false
}

func findMarker(rep summary.Report, scope, cycle, metric string) (summary.Marker, bool) {
	for _, m := range rep.Unavailable {
		if string(m.Scope) == scope && string(m.Cycle) == cycle && m.Metric == metric {
			return m, true
		}
	}
	return summary.Marker{}, false
}

// baselineCycle returns the cycle the reference of kind resolved to, empty
// when it is missing.
func baselineCycle(e summary.Entry, kind string) model.Cycle {
	for _, b := range e.Baselines {
		if string(b.Kind) == kind {
			return b.Cycle
		}
	}
	return ""
}
