package aggregate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/model"
)

func record(c model.Cycle, g model.Geography, org string, da, total int) model.SurveyRecord {
	return model.SurveyRecord{
		Cycle: c, Geography: g, OrganizationID: org,
		TotalEmployees: 100, SurveysReturned: 50,
		DriveAloneTrips: da, BusTrips: total - da, TotalWeeklyTrips: total,
	}
}

func table(t *testing.T, recs ...model.SurveyRecord) *model.Table {
	t.Helper()
	tbl, err := model.NewTable(recs)
	require.NoError(t, err)
	return tbl
}

func find(t *testing.T, sums []aggregate.Summary, s model.Scope, c model.Cycle) aggregate.Summary {
	t.Helper()
	for _, x := range sums {
		if x.Scope == s && x.Cycle == c {
			return x
		}
	}
	t.Fatalf("no summary for %s %s", s, c)
	return aggregate.Summary{}
}

func TestCitywideFromUnion(t *testing.T) {
	tbl := table(t,
		record("2021-2023", model.Downtown, "dt", 100, 200),
		record("2021-2023", model.OutsideDowntown, "odt", 50, 100),
	)
	sums := aggregate.SummarizeAll(aggregate.Aggregate(tbl, aggregate.Selection{}), aggregate.DefaultConfig())
	city := find(t, sums, model.ScopeCitywide, "2021-2023")
	dar, ok := city.WeightedDAR.Get()
	require.True(t, ok)
	assert.InDelta(t, 0.5, dar, 1e-12)
	assert.Equal(t, 2, city.Worksites)
	assert.Equal(t, 300, city.TotalWeeklyTrips)
}

/*
TestCitywideNotNaiveMean checks that the citywide rate is the pooled ratio
and differs from the average of the two geography rates when volumes differ.
*/
func TestCitywideNotNaiveMean(t *testing.T) {
	tbl := table(t,
		record("2021-2023", model.Downtown, "dt", 10, 100),
		record("2021-2023", model.OutsideDowntown, "odt", 600, 1000),
	)
	sums := aggregate.SummarizeAll(aggregate.Aggregate(tbl, aggregate.Selection{}), aggregate.DefaultConfig())
	dt, _ := find(t, sums, model.ScopeDowntown, "2021-2023").WeightedDAR.Get()
	odt, _ := find(t, sums, model.ScopeOutsideDowntown, "2021-2023").WeightedDAR.Get()
	city, _ := find(t, sums, model.ScopeCitywide, "2021-2023").WeightedDAR.Get()

	assert.InDelta(t, float64(10+600)/float64(100+1000), city, 1e-12)
	assert.NotEqual(t, (dt+odt)/2, city)
}

func TestAggregate_OrderAndAbsence(t *testing.T) {
	tbl := table(t,
		record("2019-2021", model.Downtown, "a", 1, 2),
		record("1993/1994", model.Downtown, "a", 1, 2),
		record("2007/2008", model.OutsideDowntown, "b", 1, 2),
	)
	groups := aggregate.Aggregate(tbl, aggregate.Selection{
		Geographies: []model.Scope{model.ScopeOutsideDowntown, model.ScopeDowntown},
	})
	var got []string
	for _, g := range groups {
		got = append(got, string(g.Scope)+" "+string(g.Cycle))
	}
	assert.Equal(t, []string{
		"OutsideDowntown 2007/2008",
		"Downtown 1993/1994",
		"Downtown 2019-2021",
	}, got)

	groups = aggregate.Aggregate(tbl, aggregate.Selection{Cycles: []model.Cycle{"2019-2021", "1993/1994"}})
	require.Len(t, groups, 4)
	assert.Equal(t, model.Cycle("1993/1994"), groups[0].Cycle)
}

func TestSummarize_UnavailableNotZero(t *testing.T) {
	r := record("2021-2023", model.Downtown, "a", 0, 0)
	r.TotalEmployees = 0
	r.SurveysReturned = 0
	tbl := table(t, r)
	s := aggregate.Summarize(aggregate.Aggregate(tbl, aggregate.Selection{})[0], aggregate.DefaultConfig())

	assert.False(t, s.WeightedDAR.Available)
	assert.Equal(t, model.ReasonUndefinedMetric, s.WeightedDAR.Reason)
	assert.False(t, s.NDAT.Available)
	assert.False(t, s.ResponseRate.Available)
	assert.False(t, s.Share(model.ModeBus).Available)
	assert.False(t, s.UnweightedDAR.Available)
	assert.Equal(t, 1, s.SkippedDARRecords)
	assert.Equal(t, 1, s.SkippedVMTRecords)
}

func TestSummarize_UnweightedAndGroups(t *testing.T) {
	recs := []model.SurveyRecord{
		record("2021-2023", model.Downtown, "a", 40, 100),
		record("2021-2023", model.Downtown, "b", 600, 1000),
		record("2021-2023", model.Downtown, "c", 5, 10),
	}
	for i, v := range []float64{0.4, 0.6, 0.5} {
		recs[i].DriveAloneRate = model.Float(v)
	}
	recs[0].VMTPerEmployee = model.Float(12)
	s := aggregate.Summarize(aggregate.Aggregate(table(t, recs...), aggregate.Selection{})[0], aggregate.DefaultConfig())

	u, ok := s.UnweightedDAR.Get()
	require.True(t, ok)
	assert.InDelta(t, 0.5, u, 1e-12)
	assert.Equal(t, 2, s.SkippedVMTRecords)

	transit, _ := s.TransitShare.Get()
	dar, _ := s.WeightedDAR.Get()
	assert.InDelta(t, 100-dar*100, transit, 1e-9)
	trips, _ := s.DATripsPerDay.Get()
	assert.InDelta(t, 300*dar, trips, 1e-9)
	assert.False(t, s.ShareDrift)
}

func TestAggregateDeterministic(t *testing.T) {
	tbl := table(t,
		record("2021-2023", model.Downtown, "a", 13, 70),
		record("2021-2023", model.Downtown, "b", 29, 31),
		record("2021-2023", model.OutsideDowntown, "c", 7, 90),
		record("2023-2025", model.OutsideDowntown, "c", 8, 91),
	)
	run := func() []byte {
		b, err := json.Marshal(aggregate.SummarizeAll(aggregate.Aggregate(tbl, aggregate.Selection{}), aggregate.DefaultConfig()))
		require.NoError(t, err)
		return b
	}
	assert.Equal(t, run(), run())
}
