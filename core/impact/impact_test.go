package impact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ctr/core/impact"
)

func TestExtrapolate_Defaults(t *testing.T) {
	e, err := impact.Extrapolate(0.10, 1000, impact.DefaultConstants())
	require.NoError(t, err)
	assert.InDelta(t, 100, e.DailyTripsAvoided, 1e-9)
	assert.InDelta(t, 25000, e.AnnualTripsAvoided, 1e-6)
	assert.InDelta(t, 500000, e.AnnualVMTAvoided, 1e-6)
	assert.InDelta(t, 20000, e.FuelGallonsSaved, 1e-6)
	assert.InDelta(t, 202000, e.CO2KgAvoided, 1e-6)
	assert.InDelta(t, 400000, e.CO2Avoided(0.8), 1e-6)
}

/*
TestExtrapolate_VariedConstants runs the same delta through two constant
tables to check nothing is read from shared state.
*/
func TestExtrapolate_VariedConstants(t *testing.T) {
	a, err := impact.Extrapolate(0.05, 200, impact.DefaultConstants())
	require.NoError(t, err)
	b, err := impact.Extrapolate(0.05, 200, impact.DefaultConstants().WithMiles(10))
	require.NoError(t, err)
	assert.InDelta(t, a.AnnualVMTAvoided/2, b.AnnualVMTAvoided, 1e-9)
	assert.Equal(t, 20.0, impact.DefaultConstants().RoundTripMiles)
}

func TestExtrapolate_NegativeDelta(t *testing.T) {
	e, err := impact.Extrapolate(-0.02, 100, impact.DefaultConstants())
	require.NoError(t, err)
	assert.Less(t, e.AnnualVMTAvoided, 0.0)
}

func TestConstantsValidate(t *testing.T) {
	c := impact.DefaultConstants()
	c.FuelEconomyMPG = 0
	_, err := impact.Extrapolate(0.1, 10, c)
	assert.Error(t, err)

	c = impact.DefaultConstants()
	c.WorkdaysPerYear = -1
	assert.Error(t, c.Validate())

	_, err = impact.Extrapolate(0.1, -1, impact.DefaultConstants())
	assert.Error(t, err)
}
