package model

// SurveyRecord is one worksite's survey result for a cycle. Optional values
// are nil when the source left them empty.
type SurveyRecord struct {
	Cycle          Cycle     `json:"cycle"`
	Geography      Geography `json:"geography"`
	OrganizationID string    `json:"organization_id"`

	TotalEmployees  int `json:"total_employees"`
	SurveysReturned int `json:"surveys_returned"`

	// DriveAloneRate is the worksite-reported rate in [0,1].
	DriveAloneRate *float64 `json:"drive_alone_rate,omitempty"`

	DriveAloneTrips int `json:"drive_alone_trips"`
	BusTrips        int `json:"bus_trips"`
	TrainTrips      int `json:"train_trips"`
	CarpoolTrips    int `json:"carpool_trips"`
	VanpoolTrips    int `json:"vanpool_trips"`
	WalkTrips       int `json:"walk_trips"`
	BikeTrips       int `json:"bike_trips"`
	TeleworkDays    int `json:"telework_days"`

	TotalWeeklyTrips int `json:"total_weekly_trips"`

	// VMTPerEmployee is missing for cycles before the 2007 protocol change.
	VMTPerEmployee *float64 `json:"vmt_per_employee,omitempty"`
	// ResponseRate is derived from SurveysReturned/TotalEmployees when absent.
	ResponseRate *float64 `json:"response_rate,omitempty"`
}

// ModeTrips returns the weekly count reported for mode m.
func (r SurveyRecord) ModeTrips(m Mode) int {
	switch m {
	case ModeDriveAlone:
		return r.DriveAloneTrips
	case ModeBus:
		return r.BusTrips
	case ModeTrain:
		return r.TrainTrips
	case ModeCarpool:
		return r.CarpoolTrips
	case ModeVanpool:
		return r.VanpoolTrips
	case ModeWalk:
		return r.WalkTrips
	case ModeBike:
		return r.BikeTrips
	case ModeTelework:
		return r.TeleworkDays
	}
	return 0
}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 { return &v }

func (r SurveyRecord) clone() SurveyRecord {
	c := r
	c.DriveAloneRate = cloneFloat(r.DriveAloneRate)
	c.VMTPerEmployee = cloneFloat(r.VMTPerEmployee)
	c.ResponseRate = cloneFloat(r.ResponseRate)
	return c
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
