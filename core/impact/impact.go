// Package impact extrapolates a drive-alone rate change into trips, vehicle
// miles, fuel and CO2. The figures are estimates built on fixed planning
// constants and are reported as such.
package impact

import (
	"fmt"
)

// Constants is the named table of planning assumptions used by Extrapolate.
type Constants struct {
	RoundTripMiles  float64 `json:"round_trip_miles"`
	WorkdaysPerYear float64 `json:"workdays_per_year"`
	FuelEconomyMPG  float64 `json:"fuel_economy_mpg"`
	CO2KgPerMile    float64 `json:"co2_kg_per_mile"`
	// UseSurveyVMT replaces RoundTripMiles with the cycle's reported VMT per
	// employee when one is available.
	UseSurveyVMT bool `json:"use_survey_vmt"`
}

// DefaultConstants returns the planning defaults: 20 mile round trip, 250
// workdays, 25 mpg and 0.404 kg CO2 per vehicle mile.
func DefaultConstants() Constants {
	return Constants{
		RoundTripMiles:  20,
		WorkdaysPerYear: 250,
		FuelEconomyMPG:  25,
		CO2KgPerMile:    0.404,
	}
}

// Validate rejects constants that would divide by zero or scale by nothing.
func (c Constants) Validate() error {
	if c.FuelEconomyMPG <= 0 {
		return fmt.Errorf("impact: fuel_economy_mpg must be positive, got %v", c.FuelEconomyMPG)
	}
	if c.WorkdaysPerYear <= 0 {
		return fmt.Errorf("impact: workdays_per_year must be positive, got %v", c.WorkdaysPerYear)
	}
	if c.RoundTripMiles < 0 {
		return fmt.Errorf("impact: round_trip_miles must not be negative, got %v", c.RoundTripMiles)
	}
	if c.CO2KgPerMile < 0 {
		return fmt.Errorf("impact: co2_kg_per_mile must not be negative, got %v", c.CO2KgPerMile)
	}
	return nil
}

// WithMiles returns a copy using miles as the round-trip distance.
func (c Constants) WithMiles(miles float64) Constants {
	c.RoundTripMiles = miles
	return c
}

// Estimate is the extrapolated effect of a DAR change. Positive values mean
// fewer drive-alone trips than the baseline.
type Estimate struct {
	DARDelta           float64 `json:"dar_delta"`
	Employees          int     `json:"employees"`
	RoundTripMiles     float64 `json:"round_trip_miles"`
	DailyTripsAvoided  float64 `json:"daily_trips_avoided"`
	AnnualTripsAvoided float64 `json:"annual_trips_avoided"`
	AnnualVMTAvoided   float64 `json:"annual_vmt_avoided"`
	FuelGallonsSaved   float64 `json:"fuel_gallons_saved"`
	CO2KgAvoided       float64 `json:"co2_kg_avoided"`
}

// Extrapolate turns darDelta (baseline DAR minus current DAR) over employees
// into annual figures.
func Extrapolate(darDelta float64, employees int, c Constants) (Estimate, error) {
	if err := c.Validate(); err != nil {
		return Estimate{}, err
	}
	if employees < 0 {
		return Estimate{}, fmt.Errorf("impact: negative employee count %d", employees)
	}
	daily := float64(employees) * darDelta
	vmt := daily * c.RoundTripMiles * c.WorkdaysPerYear
	return Estimate{
		DARDelta:           darDelta,
		Employees:          employees,
		RoundTripMiles:     c.RoundTripMiles,
		DailyTripsAvoided:  daily,
		AnnualTripsAvoided: daily * c.WorkdaysPerYear,
		AnnualVMTAvoided:   vmt,
		FuelGallonsSaved:   vmt / c.FuelEconomyMPG,
		CO2KgAvoided:       vmt * c.CO2KgPerMile,
	}, nil
}

// CO2Avoided returns the kilograms of CO2 avoided for another emission
// factor.
func (e Estimate) CO2Avoided(kgPerMile float64) float64 {
	return e.AnnualVMTAvoided * kgPerMile
}
