package metrics

import (
	"encoding/json"
	"fmt"
	"time"

	coremetrics "github.com/kilianp07/ctr/core/metrics"
	coremqtt "github.com/kilianp07/ctr/core/mqtt"
	"github.com/kilianp07/ctr/core/summary"
)

// MQTTSink publishes every report entry as a retained JSON message on
// <prefix>/<scope>/<cycle>, plus a report header on <prefix>/latest.
type MQTTSink struct {
	pub    coremqtt.Publisher
	prefix string
}

// NewMQTTSink creates a sink publishing under prefix.
func NewMQTTSink(pub coremqtt.Publisher, prefix string) *MQTTSink {
	if prefix == "" {
		prefix = "ctr/summary"
	}
	return &MQTTSink{pub: pub, prefix: prefix}
}

type reportHeader struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Entries     int       `json:"entries"`
	Unavailable int       `json:"unavailable"`
	Warnings    int       `json:"warnings"`
}

type entryMessage struct {
	ReportID string `json:"report_id"`
	summary.Entry
}

// RecordSummary publishes the entries then the header.
func (s *MQTTSink) RecordSummary(ev coremetrics.SummaryEvent) error {
	for _, e := range ev.Report.Entries {
		payload, err := json.Marshal(entryMessage{ReportID: ev.ReportID, Entry: e})
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", e.Scope, e.Cycle, err)
		}
		if err := s.pub.Publish(coremqtt.Join(s.prefix, string(e.Scope), string(e.Cycle)), payload, true); err != nil {
			return err
		}
	}
	payload, err := json.Marshal(reportHeader{
		ReportID:    ev.ReportID,
		GeneratedAt: ev.Time,
		Entries:     len(ev.Report.Entries),
		Unavailable: len(ev.Report.Unavailable),
		Warnings:    len(ev.Report.Warnings),
	})
	if err != nil {
		return err
	}
	return s.pub.Publish(coremqtt.Join(s.prefix, "latest"), payload, true)
}
