package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ctr/core/model"
)

func TestReadCSV(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader(csvInput(sampleRows...)))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	acme := recs[0]
	assert.Equal(t, model.Cycle("2023-2025"), acme.Cycle)
	assert.Equal(t, model.Downtown, acme.Geography)
	assert.Equal(t, "Acme", acme.OrganizationID)
	assert.Equal(t, 225, acme.DriveAloneTrips)
	assert.Equal(t, 50, acme.TeleworkDays)
	require.NotNil(t, acme.VMTPerEmployee)
	assert.InDelta(t, 8.5, *acme.VMTPerEmployee, 1e-9)

	globex := recs[1]
	assert.Equal(t, model.OutsideDowntown, globex.Geography)
	assert.Nil(t, globex.DriveAloneRate)
	assert.Nil(t, globex.VMTPerEmployee)
	assert.Nil(t, globex.ResponseRate)

	old := recs[2]
	require.NotNil(t, old.DriveAloneRate)
	assert.InDelta(t, 0.5, *old.DriveAloneRate, 1e-9)
	assert.Equal(t, 500, old.TotalWeeklyTrips)
	assert.Nil(t, old.ResponseRate)
}

func TestReadCSVSchemaViolations(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		column string
		row    int
	}{
		{"empty", "", ColCycle, 0},
		{"missing column", strings.Replace(csvInput(), ",Response_Rate", "", 1), ColResponseRate, 0},
		{"bad count", csvInput("2023-2025,DT,Acme,many,80,0.45,225,50,25,75,25,25,25,50,500,8.5,0.8"), ColTotalEmployees, 1},
		{"fractional count", csvInput(sampleRows[0], "2023-2025,DT,B,100,80,0.45,22.5,50,25,75,25,25,25,50,500,8.5,0.8"), ColDriveAloneTrips, 2},
		{"count overflow", csvInput("2023-2025,DT,Acme,1e30,80,0.45,225,50,25,75,25,25,25,50,500,8.5,0.8"), ColTotalEmployees, 1},
		{"bad location", csvInput("2023-2025,Uptown,Acme,100,80,0.45,225,50,25,75,25,25,25,50,500,8.5,0.8"), ColLocation, 1},
		{"bad rate", csvInput("2023-2025,DT,Acme,100,80,high,225,50,25,75,25,25,25,50,500,8.5,0.8"), ColDriveAloneRate, 1},
		{"empty org", csvInput("2023-2025,DT,,100,80,0.45,225,50,25,75,25,25,25,50,500,8.5,0.8"), ColOrganization, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(c.input))
			var sv *model.SchemaViolation
			require.True(t, errors.As(err, &sv), "got %v", err)
			assert.Equal(t, c.column, sv.Column)
			assert.Equal(t, c.row, sv.Row)
		})
	}
}

func TestLoadCSVValidatesTable(t *testing.T) {
	dup := csvInput(sampleRows[0], sampleRows[0])
	_, err := LoadCSV(strings.NewReader(dup))
	var sv *model.SchemaViolation
	require.True(t, errors.As(err, &sv))
	assert.Equal(t, "organization_id", sv.Column)

	tbl, err := LoadCSV(strings.NewReader(csvInput(sampleRows...)))
	require.NoError(t, err)
	assert.Equal(t, []model.Cycle{"2021-2023", "2023-2025"}, tbl.Cycles())
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surveys.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvInput(sampleRows...)), 0o644))
	src := NewCSVSource(path)
	assert.Equal(t, "csv:"+path, src.Name())
	tbl, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	_, err = NewCSVSource(filepath.Join(t.TempDir(), "missing.csv")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
