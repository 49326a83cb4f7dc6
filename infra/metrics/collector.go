package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/ctr/core/events"
	coremetrics "github.com/kilianp07/ctr/core/metrics"
	"github.com/kilianp07/ctr/infra/logger"
	"github.com/kilianp07/ctr/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	log := logger.New("metrics-collector")
	eventbus.Listen(ctx, bus, func(ev eventbus.Event) {
		if err := collect(sink, ev); err != nil {
			log.Errorf("record %T: %v", ev, err)
		}
	})
}

func collect(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	now := time.Now()
	switch e := ev.(type) {
	case events.ReportEvent:
		return sink.RecordSummary(coremetrics.SummaryEvent{ReportID: e.Report.ID, Report: e.Report, Time: now})
	case events.DatasetEvent:
		r, ok := sink.(coremetrics.DatasetLoadRecorder)
		if !ok {
			return nil
		}
		errStr := ""
		if e.Err != nil {
			errStr = e.Err.Error()
		}
		return r.RecordDatasetLoad(coremetrics.DatasetLoadEvent{
			Source:   e.Source,
			Records:  e.Records,
			Issues:   e.Issues,
			Duration: e.Duration,
			Error:    errStr,
			Time:     now,
		})
	case events.RequestEvent:
		if r, ok := sink.(coremetrics.RequestRecorder); ok {
			return r.RecordRequest(coremetrics.RequestEvent{Route: e.Route, Status: e.Status, Duration: e.Duration, Time: now})
		}
	}
	return nil
}
