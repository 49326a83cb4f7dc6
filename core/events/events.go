package events

import (
	"time"

	"github.com/kilianp07/ctr/core/summary"
)

// DatasetEvent is published after each dataset load attempt.
type DatasetEvent struct {
	Source   string
	Records  int
	Issues   int
	Duration time.Duration
	Err      error
}

// ReportEvent is published when a summary report has been built.
type ReportEvent struct {
	Report   summary.Report
	Trigger  string
	Duration time.Duration
}

// RequestEvent is published for every completed API request.
type RequestEvent struct {
	Route    string
	Status   int
	Duration time.Duration
}
