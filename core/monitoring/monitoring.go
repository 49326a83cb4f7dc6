// Package monitoring forwards fatal errors to an error tracker.
package monitoring

import (
	"errors"
	"strconv"
	"time"

	"github.com/kilianp07/ctr/core/model"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if current != nil && err != nil {
		current.CaptureException(err, tags)
	}
}

// CaptureDatasetError reports a failed dataset load. Schema violations carry
// the offending column and row as tags.
func CaptureDatasetError(err error, source string) {
	if err == nil {
		return
	}
	CaptureException(err, DatasetTags(err, source))
}

// DatasetTags builds the tag set CaptureDatasetError attaches to err.
func DatasetTags(err error, source string) map[string]string {
	tags := map[string]string{"module": "dataset"}
	if source != "" {
		tags["source"] = source
	}
	var sv *model.SchemaViolation
	if errors.As(err, &sv) {
		tags["kind"] = "schema_violation"
		tags["column"] = sv.Column
		if sv.Row > 0 {
			tags["row"] = strconv.Itoa(sv.Row)
		}
	}
	return tags
}

// Recover captures panics in goroutines.
func Recover() {
	if current != nil {
		current.Recover()
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	if current != nil {
		current.Flush(d)
	}
}
