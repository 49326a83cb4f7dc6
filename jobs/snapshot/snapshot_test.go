package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/dataset"
	coremetrics "github.com/kilianp07/ctr/core/metrics"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/report"
	"github.com/kilianp07/ctr/core/summary"
	"github.com/kilianp07/ctr/infra/logger"
)

type recordingSink struct {
	mu   sync.Mutex
	evs  []coremetrics.SummaryEvent
	fail error
}

func (r *recordingSink) RecordSummary(ev coremetrics.SummaryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.evs = append(r.evs, ev)
	return nil
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.evs)
}

func engine(t *testing.T) *report.Engine {
	t.Helper()
	var recs []model.SurveyRecord
	for _, c := range []model.Cycle{"2019-2021", "2021-2023", "2023-2025"} {
		recs = append(recs, model.SurveyRecord{
			Cycle: c, Geography: model.Downtown, OrganizationID: "a",
			TotalEmployees: 100, DriveAloneTrips: 250, BusTrips: 250, TotalWeeklyTrips: 500,
		})
	}
	src, err := dataset.FromRecords("fixture", recs)
	require.NoError(t, err)
	eng, err := report.NewEngine(src, summary.DefaultConfig())
	require.NoError(t, err)
	return eng
}

func TestPublish(t *testing.T) {
	sink := &recordingSink{}
	job := New(engine(t), sink, aggregate.Selection{}, time.Second)
	job.SetLogger(logger.NopLogger{})
	rep, err := job.Publish(context.Background(), report.TriggerCLI)
	require.NoError(t, err)
	require.Equal(t, 1, sink.count())
	assert.Equal(t, rep.ID, sink.evs[0].ReportID)
	assert.Len(t, rep.Entries, 6)

	sink.fail = errors.New("down")
	_, err = job.Publish(context.Background(), report.TriggerCLI)
	assert.Error(t, err)
}

func TestBackfill(t *testing.T) {
	sink := &recordingSink{}
	job := New(engine(t), sink, aggregate.Selection{Geographies: []model.Scope{model.ScopeCitywide}}, 0)
	job.SetLogger(logger.NopLogger{})
	n, err := job.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Equal(t, 3, sink.count())
	for i, c := range []model.Cycle{"2019-2021", "2021-2023", "2023-2025"} {
		require.Len(t, sink.evs[i].Report.Entries, 1)
		assert.Equal(t, c, sink.evs[i].Report.Entries[0].Cycle)
	}
}

func TestRunPublishesOnTrigger(t *testing.T) {
	sink := &recordingSink{}
	job := New(engine(t), sink, aggregate.Selection{}, 0)
	job.SetLogger(logger.NopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	trigger := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		job.Run(ctx, time.Hour, trigger)
		close(done)
	}()
	trigger <- report.TriggerMQTT
	assert.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}
