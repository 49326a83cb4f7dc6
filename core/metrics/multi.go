package metrics

import (
	"errors"
	"io"
)

// MultiSink fans reports and events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSummary forwards the report to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSummary(ev SummaryEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSummary(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordDatasetLoad forwards dataset loads when supported by the sink.
func (m *MultiSink) RecordDatasetLoad(ev DatasetLoadEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(DatasetLoadRecorder); ok {
			if err := rec.RecordDatasetLoad(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRequest forwards request latency when supported by the sink.
func (m *MultiSink) RecordRequest(ev RequestEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RequestRecorder); ok {
			if err := rec.RecordRequest(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		switch c := s.(type) {
		case io.Closer:
			errs = append(errs, c.Close())
		case interface{ Close() }:
			c.Close()
		}
	}
	return errors.Join(errs...)
}
