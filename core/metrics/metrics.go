package metrics

import (
	"time"

	"github.com/kilianp07/ctr/core/summary"
)

// SummaryEvent carries a built report to the sinks.
type SummaryEvent struct {
	ReportID string
	Report   summary.Report
	Time     time.Time
}

// MetricsSink records summary reports for observability purposes.
type MetricsSink interface {
	RecordSummary(ev SummaryEvent) error
}

// DatasetLoadEvent captures one dataset load.
type DatasetLoadEvent struct {
	Source   string
	Records  int
	Issues   int
	Duration time.Duration
	Error    string
	Time     time.Time
}

// DatasetLoadRecorder records dataset loads.
type DatasetLoadRecorder interface {
	RecordDatasetLoad(ev DatasetLoadEvent) error
}

// RequestEvent captures one API request.
type RequestEvent struct {
	Route    string
	Status   int
	Duration time.Duration
	Time     time.Time
}

// RequestRecorder records API request latency.
type RequestRecorder interface {
	RecordRequest(ev RequestEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSummary(SummaryEvent) error         { return nil }
func (NopSink) RecordDatasetLoad(DatasetLoadEvent) error { return nil }
func (NopSink) RecordRequest(RequestEvent) error         { return nil }
