package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/audit"
	"github.com/kilianp07/ctr/core/dataset"
	"github.com/kilianp07/ctr/core/events"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/summary"
	"github.com/kilianp07/ctr/infra/logger"
	"github.com/kilianp07/ctr/internal/eventbus"
)

type memStore struct{ recs []audit.Record }

func (m *memStore) Append(_ context.Context, r audit.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(_ context.Context, q audit.Query) ([]audit.Record, error) {
	var out []audit.Record
	for _, r := range m.recs {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

type failingSource struct{ err error }

func (f failingSource) Load(context.Context) (*model.Table, error) { return nil, f.err }
func (f failingSource) Name() string                               { return "broken" }

func source(t *testing.T) dataset.Source {
	t.Helper()
	var recs []model.SurveyRecord
	for _, c := range []model.Cycle{"2019-2021", "2021-2023", "2023-2025"} {
		for _, org := range []string{"a", "b", "c"} {
			recs = append(recs, model.SurveyRecord{
				Cycle: c, Geography: model.Downtown, OrganizationID: org,
				TotalEmployees: 100, SurveysReturned: 60, DriveAloneRate: model.Float(0.5),
				DriveAloneTrips: 250, BusTrips: 250, TotalWeeklyTrips: 500,
			})
		}
	}
	recs = append(recs, model.SurveyRecord{
		Cycle: "2023-2025", Geography: model.OutsideDowntown, OrganizationID: "d",
		TotalEmployees: 40, SurveysReturned: 10, DriveAloneRate: model.Float(0.8),
		DriveAloneTrips: 160, WalkTrips: 40, TotalWeeklyTrips: 200,
	})
	src, err := dataset.FromRecords("fixture", recs)
	require.NoError(t, err)
	return src
}

func TestEngine_Build(t *testing.T) {
	store := &memStore{}
	bus := eventbus.New()
	sub := bus.Subscribe()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	eng, err := NewEngine(source(t), summary.DefaultConfig(),
		WithAudit(store), WithBus(bus), WithLogger(logger.NopLogger{}),
		WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	rep, err := eng.Build(context.Background(), aggregate.Selection{Geographies: []model.Scope{model.ScopeDowntown}}, TriggerAPI)
	require.NoError(t, err)
	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, now, rep.GeneratedAt)
	assert.Len(t, rep.Entries, 3)

	require.Len(t, store.recs, 1)
	assert.Equal(t, rep.ID, store.recs[0].ReportID)
	assert.Equal(t, TriggerAPI, store.recs[0].Trigger)

	select {
	case ev := <-sub:
		re, ok := ev.(events.ReportEvent)
		require.True(t, ok)
		assert.Equal(t, rep.ID, re.Report.ID)
		assert.Equal(t, TriggerAPI, re.Trigger)
	case <-time.After(time.Second):
		t.Fatal("no report event")
	}

	recs, err := eng.Audit(context.Background(), audit.Query{Trigger: TriggerAPI})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestEngine_BuildSchemaViolation(t *testing.T) {
	store := &memStore{}
	sv := &model.SchemaViolation{Column: "Location", Row: 3, Msg: "unknown geography"}
	eng, err := NewEngine(failingSource{err: sv}, summary.DefaultConfig(), WithAudit(store))
	require.NoError(t, err)

	_, err = eng.Build(context.Background(), aggregate.Selection{}, TriggerCLI)
	var got *model.SchemaViolation
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 3, got.Row)
	require.Len(t, store.recs, 1)
	assert.NotEmpty(t, store.recs[0].Error)
}

func TestEngine_Ranking(t *testing.T) {
	eng, err := NewEngine(source(t), summary.DefaultConfig())
	require.NoError(t, err)

	rk, err := eng.Ranking(context.Background(), model.ScopeCitywide, "", 2)
	require.NoError(t, err)
	assert.Equal(t, model.Cycle("2023-2025"), rk.Cycle)
	require.Len(t, rk.Highest, 2)
	assert.Equal(t, "d", rk.Highest[0].OrganizationID)
	assert.Equal(t, "a", rk.Lowest[0].OrganizationID)

	empty, err := NewEngine(dataset.Static{Table: mustTable(t)}, summary.DefaultConfig())
	require.NoError(t, err)
	rk, err = empty.Ranking(context.Background(), model.ScopeDowntown, "", 0)
	require.NoError(t, err)
	assert.Empty(t, rk.Lowest)
}

func TestNewEngineValidates(t *testing.T) {
	_, err := NewEngine(nil, summary.DefaultConfig())
	assert.Error(t, err)
	cfg := summary.DefaultConfig()
	cfg.Rolling.Window = 0
	_, err = NewEngine(source(t), cfg)
	assert.Error(t, err)
}

func mustTable(t *testing.T) *model.Table {
	t.Helper()
	tbl, err := model.NewTable(nil)
	require.NoError(t, err)
	return tbl
}
