package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/compliance"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/summary"
)

func testReport(t *testing.T) summary.Report {
	t.Helper()
	tbl, err := model.NewTable([]model.SurveyRecord{
		{Cycle: "2023-2025", Geography: model.Downtown, OrganizationID: "a", TotalEmployees: 100, SurveysReturned: 60,
			DriveAloneRate: model.Float(0.4), DriveAloneTrips: 200, BusTrips: 300, TotalWeeklyTrips: 500},
		{Cycle: "2023-2025", Geography: model.OutsideDowntown, OrganizationID: "b", TotalEmployees: 50, SurveysReturned: 20,
			DriveAloneRate: model.Float(0.6), DriveAloneTrips: 150, WalkTrips: 100, TotalWeeklyTrips: 250},
	})
	require.NoError(t, err)
	rep, err := summary.Build(tbl, aggregate.Selection{}, summary.DefaultConfig())
	require.NoError(t, err)
	return rep
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testReport(t)))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, summary.Columns, rows[0])
	assert.Equal(t, []string{"Downtown", "2023-2025"}, rows[1][:2])
	assert.Equal(t, "Citywide", rows[3][0])
	assert.Equal(t, "0.4", rows[1][5])
	// a single cycle has no prior reference
	col := indexOf(rows[0], "change_from_prior")
	assert.Equal(t, "", rows[1][col])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testReport(t)))
	var out summary.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Len(t, out.Entries, 3)
	assert.NotEmpty(t, out.Unavailable)
}

func TestWriteRankingCSV(t *testing.T) {
	rk := compliance.Ranking{
		Lowest:  []compliance.Worksite{{OrganizationID: "a", Geography: model.Downtown, DriveAloneRate: 0.2, TotalEmployees: 10, ResponseRate: model.Float(0.5)}},
		Highest: []compliance.Worksite{{OrganizationID: "b", Geography: model.OutsideDowntown, DriveAloneRate: 0.9, TotalEmployees: 20}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRankingCSV(&buf, rk))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"lowest", "1", "a", "Downtown", "0.2", "10", "0.5"}, rows[1])
	assert.Equal(t, []string{"highest", "1", "b", "OutsideDowntown", "0.9", "20", ""}, rows[2])
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
