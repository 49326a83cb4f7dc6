package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ctr/core/aggregate"
	coremetrics "github.com/kilianp07/ctr/core/metrics"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/summary"
)

func testReport(t *testing.T) summary.Report {
	t.Helper()
	tbl, err := model.NewTable([]model.SurveyRecord{
		{Cycle: "2019/2020", Geography: model.Downtown, OrganizationID: "a",
			TotalEmployees: 10, SurveysReturned: 6, DriveAloneTrips: 30, BusTrips: 70, TotalWeeklyTrips: 100},
		{Cycle: "2019/2020", Geography: model.OutsideDowntown, OrganizationID: "b",
			TotalEmployees: 20, SurveysReturned: 12, DriveAloneTrips: 50, BusTrips: 50, TotalWeeklyTrips: 100},
	})
	require.NoError(t, err)
	rep, err := summary.Build(tbl, aggregate.Selection{}, summary.DefaultConfig())
	require.NoError(t, err)
	rep.ID = "rep-1"
	return rep
}

func TestInfluxSink_RecordSummary(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	ev := coremetrics.SummaryEvent{ReportID: "rep-1", Report: testReport(t), Time: time.Unix(1700000000, 0)}
	if err := sink.RecordSummary(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 3 {
		t.Fatalf("expected 3 points, got %d", len(bodies))
	}
	first := bodies[0]
	for _, want := range []string{"ctr_summary,", "scope=Downtown", "cycle=2019/2020", "report_id=rep-1", "weighted_dar=0.3", "1700000000000000000"} {
		if !strings.Contains(first, want) {
			t.Errorf("missing %q in %s", want, first)
		}
	}
	if strings.Contains(first, "unweighted_dar") {
		t.Errorf("unavailable metric written: %s", first)
	}
	if !strings.Contains(bodies[2], "scope=Citywide") || !strings.Contains(bodies[2], "weighted_dar=0.4") {
		t.Errorf("unexpected citywide point: %s", bodies[2])
	}
}

func TestInfluxSink_RecordDatasetLoad(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()
	err := sink.RecordDatasetLoad(coremetrics.DatasetLoadEvent{Source: "csv", Records: 42, Issues: 1, Duration: 2 * time.Millisecond, Time: time.Now()})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	for _, want := range []string{"dataset_load,source=csv", "records=42i", "issues=1i", "duration_ms=2"} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in %s", want, body)
		}
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
