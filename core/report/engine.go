// Package report runs summary computations against the current dataset and
// records each run on the event bus and in the audit log.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/audit"
	"github.com/kilianp07/ctr/core/compliance"
	"github.com/kilianp07/ctr/core/dataset"
	"github.com/kilianp07/ctr/core/events"
	"github.com/kilianp07/ctr/core/logger"
	"github.com/kilianp07/ctr/core/model"
	coremon "github.com/kilianp07/ctr/core/monitoring"
	"github.com/kilianp07/ctr/core/summary"
	"github.com/kilianp07/ctr/internal/eventbus"
)

// Triggers identify what asked for a report.
const (
	TriggerAPI      = "api"
	TriggerCLI      = "cli"
	TriggerSnapshot = "snapshot"
	TriggerMQTT     = "mqtt"
)

// Engine builds reports. It is safe for concurrent use as long as its
// collaborators are.
type Engine struct {
	src   dataset.Source
	cfg   summary.Config
	store audit.Store
	bus   eventbus.EventBus
	log   logger.Logger
	now   func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithAudit records every run in store.
func WithAudit(store audit.Store) Option { return func(e *Engine) { e.store = store } }

// WithBus publishes a ReportEvent for every successful run.
func WithBus(bus eventbus.EventBus) Option { return func(e *Engine) { e.bus = bus } }

// WithLogger replaces the default no-op logger.
func WithLogger(l logger.Logger) Option { return func(e *Engine) { e.log = l } }

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine validates cfg and returns an engine reading from src.
func NewEngine(src dataset.Source, cfg summary.Config, opts ...Option) (*Engine, error) {
	if src == nil {
		return nil, errors.New("report: nil dataset source")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	e := &Engine{src: src, cfg: cfg, store: audit.NopStore{}, log: nopLogger{}, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Config returns the summary configuration the engine uses.
func (e *Engine) Config() summary.Config { return e.cfg }

// Table loads the current dataset.
func (e *Engine) Table(ctx context.Context) (*model.Table, error) {
	t, err := e.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", e.src.Name(), err)
	}
	return t, nil
}

// Cycles lists the cycles of the current dataset, earliest first.
func (e *Engine) Cycles(ctx context.Context) ([]model.Cycle, error) {
	t, err := e.Table(ctx)
	if err != nil {
		return nil, err
	}
	return t.Cycles(), nil
}

// Build computes a report over sel and stamps it with a fresh id. Failed runs
// are audited too. Only a dataset failure, such as a schema violation, or an
// invalid configuration returns an error.
func (e *Engine) Build(ctx context.Context, sel aggregate.Selection, trigger string) (summary.Report, error) {
	start := e.now()
	rep, err := e.build(ctx, sel)
	rep.ID = uuid.NewString()
	rep.GeneratedAt = start.UTC()
	d := e.now().Sub(start)

	rec := audit.NewRecord(rep, trigger, d, err)
	if aerr := e.store.Append(ctx, rec); aerr != nil {
		e.log.Warnf("audit append %s: %v", rec.ID, aerr)
	}
	if err != nil {
		e.log.Errorf("report %s (%s) failed: %v", rep.ID, trigger, err)
		return summary.Report{}, err
	}
	e.log.Debugw("report built", logger.Fields("", "", map[string]any{
		"report_id":   rep.ID,
		"trigger":     trigger,
		"entries":     len(rep.Entries),
		"unavailable": len(rep.Unavailable),
		"warnings":    len(rep.Warnings),
		"duration_ms": d.Milliseconds(),
	}))
	if e.bus != nil {
		e.bus.Publish(events.ReportEvent{Report: rep, Trigger: trigger, Duration: d})
	}
	return rep, nil
}

func (e *Engine) build(ctx context.Context, sel aggregate.Selection) (summary.Report, error) {
	t, err := e.Table(ctx)
	if err != nil {
		// Load failures are reported here only, whatever source sits below.
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			coremon.CaptureDatasetError(err, e.src.Name())
		}
		return summary.Report{Selection: sel}, err
	}
	for _, c := range sel.Cycles {
		if !t.HasCycle(c) {
			e.log.Warnf("requested cycle %s not in dataset", c)
		}
	}
	return summary.Build(t, sel, e.cfg)
}

// Ranking returns the top and bottom worksites of scope in cycle. An empty
// cycle selects the latest one. A non-positive n uses the configured top N.
func (e *Engine) Ranking(ctx context.Context, scope model.Scope, cycle model.Cycle, n int) (compliance.Ranking, error) {
	t, err := e.Table(ctx)
	if err != nil {
		return compliance.Ranking{}, err
	}
	if cycle == "" {
		cs := t.ScopeCycles(scope)
		if len(cs) == 0 {
			return compliance.Ranking{Scope: scope, Lowest: []compliance.Worksite{}, Highest: []compliance.Worksite{}}, nil
		}
		cycle = cs[len(cs)-1]
	}
	if n <= 0 {
		n = e.cfg.Compliance.TopN
	}
	return compliance.Rank(t, scope, cycle, n), nil
}

// Audit queries the audit log.
func (e *Engine) Audit(ctx context.Context, q audit.Query) ([]audit.Record, error) {
	return e.store.Query(ctx, q)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
