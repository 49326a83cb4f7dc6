package model

import (
	"fmt"
	"math"
)

// Issue is a data-quality flag raised while loading. Issues never stop a
// computation.
type Issue struct {
	Row            int       `json:"row"`
	Cycle          Cycle     `json:"cycle"`
	Geography      Geography `json:"geography"`
	OrganizationID string    `json:"organization_id"`
	Kind           string    `json:"kind"`
	Msg            string    `json:"msg"`
}

const (
	IssueSurveysExceedEmployees = "surveys_exceed_employees"
	IssueTotalBelowDriveAlone   = "total_below_drive_alone"
)

// Table is an immutable snapshot of survey records. It is safe for concurrent
// readers; no method mutates it after NewTable returns.
type Table struct {
	records []SurveyRecord
	cycles  []Cycle
	issues  []Issue
}

// NewTable validates and copies records. Response rates missing from the
// source are derived from surveys returned over total employees.
//
//gocyclo:ignore
func NewTable(records []SurveyRecord) (*Table, error) {
	t := &Table{records: make([]SurveyRecord, 0, len(records))}
	seenCycle := map[Cycle]bool{}
	seenOrg := map[string]bool{}
	for i, in := range records {
		row := i + 1
		r := in.clone()
		if err := r.Cycle.Validate(); err != nil {
			return nil, &SchemaViolation{Column: "cycle", Row: row, Msg: err.Error()}
		}
		if !r.Geography.Valid() {
			return nil, &SchemaViolation{Column: "geography", Row: row, Msg: fmt.Sprintf("invalid geography %d", int(r.Geography))}
		}
		if r.OrganizationID == "" {
			return nil, &SchemaViolation{Column: "organization_id", Row: row, Msg: "empty organization id"}
		}
		key := string(r.Cycle) + "\x00" + r.OrganizationID
		if seenOrg[key] {
			return nil, &SchemaViolation{Column: "organization_id", Row: row, Msg: fmt.Sprintf("duplicate organization %q in cycle %s", r.OrganizationID, r.Cycle)}
		}
		seenOrg[key] = true
		if err := checkCounts(r, row); err != nil {
			return nil, err
		}
		if err := checkRate("drive_alone_rate", r.DriveAloneRate, row); err != nil {
			return nil, err
		}
		if err := checkRate("response_rate", r.ResponseRate, row); err != nil {
			return nil, err
		}
		if v := r.VMTPerEmployee; v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0) {
			return nil, &SchemaViolation{Column: "vmt_per_employee", Row: row, Msg: fmt.Sprintf("invalid value %v", *v)}
		}
		if r.ResponseRate == nil && r.TotalEmployees > 0 {
			r.ResponseRate = Float(float64(r.SurveysReturned) / float64(r.TotalEmployees))
		}
		if r.SurveysReturned > r.TotalEmployees {
			t.issues = append(t.issues, Issue{Row: row, Cycle: r.Cycle, Geography: r.Geography, OrganizationID: r.OrganizationID,
				Kind: IssueSurveysExceedEmployees,
				Msg:  fmt.Sprintf("surveys returned %d exceed employees %d", r.SurveysReturned, r.TotalEmployees)})
		}
		if r.TotalWeeklyTrips < r.DriveAloneTrips {
			t.issues = append(t.issues, Issue{Row: row, Cycle: r.Cycle, Geography: r.Geography, OrganizationID: r.OrganizationID,
				Kind: IssueTotalBelowDriveAlone,
				Msg:  fmt.Sprintf("total weekly trips %d below drive-alone trips %d", r.TotalWeeklyTrips, r.DriveAloneTrips)})
		}
		if !seenCycle[r.Cycle] {
			seenCycle[r.Cycle] = true
			t.cycles = append(t.cycles, r.Cycle)
		}
		t.records = append(t.records, r)
	}
	SortCycles(t.cycles)
	return t, nil
}

func checkCounts(r SurveyRecord, row int) error {
	counts := []struct {
		col string
		v   int
	}{
		{"total_employees", r.TotalEmployees},
		{"surveys_returned", r.SurveysReturned},
		{"drive_alone_trips", r.DriveAloneTrips},
		{"bus_trips", r.BusTrips},
		{"train_trips", r.TrainTrips},
		{"carpool_trips", r.CarpoolTrips},
		{"vanpool_trips", r.VanpoolTrips},
		{"walk_trips", r.WalkTrips},
		{"bike_trips", r.BikeTrips},
		{"telework_days", r.TeleworkDays},
		{"total_weekly_trips", r.TotalWeeklyTrips},
	}
	for _, c := range counts {
		if c.v < 0 {
			return &SchemaViolation{Column: c.col, Row: row, Msg: fmt.Sprintf("negative count %d", c.v)}
		}
	}
	return nil
}

func checkRate(col string, v *float64, row int) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || *v < 0 || *v > 1 {
		return &SchemaViolation{Column: col, Row: row, Msg: fmt.Sprintf("rate %v outside [0,1]", *v)}
	}
	return nil
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Cycles returns every cycle present, earliest first.
func (t *Table) Cycles() []Cycle { return append([]Cycle(nil), t.cycles...) }

// Issues returns the data-quality flags raised at load time.
func (t *Table) Issues() []Issue { return append([]Issue(nil), t.issues...) }

// Records returns a copy of all records.
func (t *Table) Records() []SurveyRecord {
	out := make([]SurveyRecord, len(t.records))
	for i, r := range t.records {
		out[i] = r.clone()
	}
	return out
}

// Select returns copies of the records of scope in cycle, in load order.
func (t *Table) Select(scope Scope, cycle Cycle) []SurveyRecord {
	var out []SurveyRecord
	for _, r := range t.records {
		if r.Cycle == cycle && scope.Includes(r.Geography) {
			out = append(out, r.clone())
		}
	}
	return out
}

// ScopeCycles returns the cycles with at least one record in scope, earliest
// first.
func (t *Table) ScopeCycles(scope Scope) []Cycle {
	seen := map[Cycle]bool{}
	var out []Cycle
	for _, c := range t.cycles {
		for _, r := range t.records {
			if r.Cycle == c && scope.Includes(r.Geography) && !seen[c] {
				seen[c] = true
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// HasCycle reports whether any record belongs to cycle c.
func (t *Table) HasCycle(c Cycle) bool {
	for _, x := range t.cycles {
		if x == c {
			return true
		}
	}
	return false
}

// Each calls fn for every record in load order until fn returns false. The
// record passed to fn is a copy.
func (t *Table) Each(fn func(SurveyRecord) bool) {
	for _, r := range t.records {
		if !fn(r.clone()) {
			return
		}
	}
}
