package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/model"
)

type RecordDef struct {
	Cycle          string   `yaml:"cycle"`
	Location       string   `yaml:"location"`
	Organization   string   `yaml:"organization"`
	Employees      int      `yaml:"employees"`
	Returned       int      `yaml:"returned"`
	DriveAloneRate *float64 `yaml:"drive_alone_rate,omitempty"`
	DriveAlone     int      `yaml:"drive_alone"`
	Bus            int      `yaml:"bus"`
	Train          int      `yaml:"train"`
	Carpool        int      `yaml:"carpool"`
	Vanpool        int      `yaml:"vanpool"`
	Walk           int      `yaml:"walk"`
	Bike           int      `yaml:"bike"`
	Telework       int      `yaml:"telework"`
	TotalTrips     int      `yaml:"total_trips"`
	VMT            *float64 `yaml:"vmt,omitempty"`
}

func (r RecordDef) ToModel() (model.SurveyRecord, error) {
	g, err := model.ParseGeography(r.Location)
	if err != nil {
		return model.SurveyRecord{}, err
	}
	return model.SurveyRecord{
		Cycle:            model.Cycle(r.Cycle),
		Geography:        g,
		OrganizationID:   r.Organization,
		TotalEmployees:   r.Employees,
		SurveysReturned:  r.Returned,
		DriveAloneRate:   r.DriveAloneRate,
		DriveAloneTrips:  r.DriveAlone,
		BusTrips:         r.Bus,
		TrainTrips:       r.Train,
		CarpoolTrips:     r.Carpool,
		VanpoolTrips:     r.Vanpool,
		WalkTrips:        r.Walk,
		BikeTrips:        r.Bike,
		TeleworkDays:     r.Telework,
		TotalWeeklyTrips: r.TotalTrips,
		VMTPerEmployee:   r.VMT,
	}, nil
}

type SelectionDef struct {
	Scopes []string `yaml:"scopes"`
	Cycles []string `yaml:"cycles"`
}

func (s SelectionDef) ToModel() (aggregate.Selection, error) {
	var sel aggregate.Selection
	for _, v := range s.Scopes {
		scope, err := model.ParseScope(v)
		if err != nil {
			return sel, err
		}
		sel.Geographies = append(sel.Geographies, scope)
	}
	for _, c := range s.Cycles {
		sel.Cycles = append(sel.Cycles, model.Cycle(c))
	}
	return sel, nil
}

// Expected describes one report entry. Metrics must be exported with the
// given value; Unavailable maps a metric name to the reason it is missing.
type Expected struct {
	Scope       string             `yaml:"scope"`
	Cycle       string             `yaml:"cycle"`
	Metrics     map[string]float64 `yaml:"metrics"`
	Unavailable map[string]string  `yaml:"unavailable,omitempty"`
	Baselines   map[string]string  `yaml:"baselines,omitempty"`
}

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Records     []RecordDef  `yaml:"records"`
	Selection   SelectionDef `yaml:"selection"`
	Expected    []Expected   `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario without name", path)
	}
	return &sc, nil
}
