// Package audit keeps a log of computed summary reports so that a published
// figure can be traced back to the selection and data quality it came from.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/summary"
)

// Record captures one summary computation.
type Record struct {
	ID          string           `json:"id"`
	Timestamp   time.Time        `json:"timestamp"`
	Trigger     string           `json:"trigger"`
	ReportID    string           `json:"report_id,omitempty"`
	Scopes      []model.Scope    `json:"scopes"`
	Cycles      []model.Cycle    `json:"cycles"`
	Entries     int              `json:"entries"`
	Unavailable []summary.Marker `json:"unavailable,omitempty"`
	Warnings    int              `json:"warnings"`
	DurationMS  int64            `json:"duration_ms"`
	Error       string           `json:"error,omitempty"`
}

// NewRecord summarises rep for the log. A non-nil err marks a failed run.
func NewRecord(rep summary.Report, trigger string, d time.Duration, err error) Record {
	rec := Record{
		ID:          uuid.NewString(),
		Timestamp:   rep.GeneratedAt,
		Trigger:     trigger,
		ReportID:    rep.ID,
		Entries:     len(rep.Entries),
		Unavailable: rep.Unavailable,
		Warnings:    len(rep.Warnings),
		DurationMS:  d.Milliseconds(),
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if err != nil {
		rec.Error = err.Error()
	}
	seenScope := map[model.Scope]bool{}
	seenCycle := map[model.Cycle]bool{}
	for _, e := range rep.Entries {
		if !seenScope[e.Scope] {
			seenScope[e.Scope] = true
			rec.Scopes = append(rec.Scopes, e.Scope)
		}
		if !seenCycle[e.Cycle] {
			seenCycle[e.Cycle] = true
			rec.Cycles = append(rec.Cycles, e.Cycle)
		}
	}
	model.SortCycles(rec.Cycles)
	return rec
}

// Query defines filters for retrieving records. Zero fields match everything.
type Query struct {
	Start   time.Time
	End     time.Time
	Scope   model.Scope
	Cycle   model.Cycle
	Trigger string
}

// Match reports whether r passes every filter of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Trigger != "" && r.Trigger != q.Trigger {
		return false
	}
	if q.Scope != "" && !containsScope(r.Scopes, q.Scope) {
		return false
	}
	if q.Cycle != "" && !containsCycle(r.Cycles, q.Cycle) {
		return false
	}
	return true
}

func containsScope(list []model.Scope, s model.Scope) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsCycle(list []model.Cycle, c model.Cycle) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
