package audit

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/summary"
)

func testReport() summary.Report {
	rep := summary.Report{
		ID:          "rep-1",
		GeneratedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Unavailable: []summary.Marker{{Scope: model.ScopeDowntown, Cycle: "2023-2025", Metric: "tmp_average", Reason: model.ReasonInsufficientData}},
		Warnings:    []summary.Warning{{Kind: summary.WarningModeShareDrift}},
	}
	for _, sc := range []model.Scope{model.ScopeDowntown, model.ScopeCitywide} {
		for _, c := range []model.Cycle{"2023-2025", "2021-2023"} {
			var e summary.Entry
			e.Scope = sc
			e.Cycle = c
			rep.Entries = append(rep.Entries, e)
		}
	}
	return rep
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord(testReport(), "api", 1500*time.Millisecond, nil)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "rep-1", rec.ReportID)
	assert.Equal(t, []model.Scope{model.ScopeDowntown, model.ScopeCitywide}, rec.Scopes)
	assert.Equal(t, []model.Cycle{"2021-2023", "2023-2025"}, rec.Cycles)
	assert.Equal(t, 4, rec.Entries)
	assert.Equal(t, 1, rec.Warnings)
	assert.Len(t, rec.Unavailable, 1)
	assert.Equal(t, int64(1500), rec.DurationMS)
	assert.Empty(t, rec.Error)

	failed := NewRecord(summary.Report{}, "cli", 0, errors.New("schema violation"))
	assert.Equal(t, "schema violation", failed.Error)
	assert.False(t, failed.Timestamp.IsZero())
}

func TestRecordJSON(t *testing.T) {
	rec := NewRecord(testReport(), "snapshot", time.Second, nil)
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"id", "timestamp", "trigger", "scopes", "cycles", "entries", "duration_ms"} {
		assert.Contains(t, m, k)
	}
	assert.NotContains(t, m, "error")
}

func TestQueryMatch(t *testing.T) {
	rec := NewRecord(testReport(), "api", 0, nil)
	ts := rec.Timestamp
	cases := []struct {
		name string
		q    Query
		want bool
	}{
		{"empty", Query{}, true},
		{"in window", Query{Start: ts.Add(-time.Hour), End: ts.Add(time.Hour)}, true},
		{"before start", Query{Start: ts.Add(time.Minute)}, false},
		{"after end", Query{End: ts.Add(-time.Minute)}, false},
		{"scope", Query{Scope: model.ScopeCitywide}, true},
		{"other scope", Query{Scope: model.ScopeOutsideDowntown}, false},
		{"cycle", Query{Cycle: "2021-2023"}, true},
		{"other cycle", Query{Cycle: "1993/1994"}, false},
		{"trigger", Query{Trigger: "cli"}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.q.Match(rec), c.name)
	}
}
