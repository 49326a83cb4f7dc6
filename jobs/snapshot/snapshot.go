// Package snapshot publishes summary reports on a schedule, on demand and as
// a historical backfill.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/ctr/core/aggregate"
	coremetrics "github.com/kilianp07/ctr/core/metrics"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/report"
	"github.com/kilianp07/ctr/core/summary"
	"github.com/kilianp07/ctr/infra/logger"
)

// Builder computes reports.
type Builder interface {
	Build(ctx context.Context, sel aggregate.Selection, trigger string) (summary.Report, error)
	Cycles(ctx context.Context) ([]model.Cycle, error)
}

// Job builds reports and hands them to a sink. A nil sink leaves
// publication to whoever listens on the builder's event bus.
type Job struct {
	b       Builder
	sink    coremetrics.MetricsSink
	sel     aggregate.Selection
	timeout time.Duration
	log     logger.Logger
}

// New returns a job publishing reports over sel.
func New(b Builder, sink coremetrics.MetricsSink, sel aggregate.Selection, timeout time.Duration) *Job {
	return &Job{b: b, sink: sink, sel: sel, timeout: timeout, log: logger.New("snapshot")}
}

// SetLogger replaces the default logger.
func (j *Job) SetLogger(l logger.Logger) {
	if l != nil {
		j.log = l
	}
}

// Publish builds one report and records it.
func (j *Job) Publish(ctx context.Context, trigger string) (summary.Report, error) {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	rep, err := j.b.Build(ctx, j.sel, trigger)
	if err != nil {
		return summary.Report{}, fmt.Errorf("build snapshot: %w", err)
	}
	if err := j.record(rep); err != nil {
		return rep, err
	}
	j.log.Infof("published report %s (%d entries, %d unavailable)", rep.ID, len(rep.Entries), len(rep.Unavailable))
	return rep, nil
}

// Backfill publishes one report per cycle of the dataset, earliest first, so
// that time series sinks carry the full history.
func (j *Job) Backfill(ctx context.Context) (int, error) {
	cycles, err := j.b.Cycles(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range cycles {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		sel := aggregate.Selection{Geographies: j.sel.Geographies, Cycles: []model.Cycle{c}}
		rep, err := j.b.Build(ctx, sel, report.TriggerSnapshot)
		if err != nil {
			return n, fmt.Errorf("backfill %s: %w", c, err)
		}
		if err := j.record(rep); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Run publishes every interval and whenever trigger receives. It returns
// when ctx is canceled. Failures are logged and the loop keeps going.
func (j *Job) Run(ctx context.Context, interval time.Duration, trigger <-chan string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	j.publishLogged(ctx, report.TriggerSnapshot)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.publishLogged(ctx, report.TriggerSnapshot)
		case t, ok := <-trigger:
			if !ok {
				trigger = nil
				continue
			}
			j.publishLogged(ctx, t)
		}
	}
}

func (j *Job) publishLogged(ctx context.Context, trigger string) {
	if _, err := j.Publish(ctx, trigger); err != nil {
		j.log.Errorf("snapshot: %v", err)
	}
}

func (j *Job) record(rep summary.Report) error {
	if j.sink == nil {
		return nil
	}
	if err := j.sink.RecordSummary(coremetrics.SummaryEvent{ReportID: rep.ID, Report: rep, Time: rep.GeneratedAt}); err != nil {
		return fmt.Errorf("record report %s: %w", rep.ID, err)
	}
	return nil
}
