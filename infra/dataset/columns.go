// Package dataset loads survey tables from CSV files and SQLite databases.
package dataset

import "github.com/kilianp07/ctr/core/model"

// Column names of the survey master dataset.
const (
	ColCycle            = "Survey_Cycle"
	ColLocation         = "Location"
	ColOrganization     = "Organization_Name"
	ColTotalEmployees   = "Total_Employees"
	ColSurveysReturned  = "Surveys_Returned"
	ColDriveAloneRate   = "Drive_Alone_Rate"
	ColDriveAloneTrips  = "Weekly_Drive_Alone_Trips"
	ColBusTrips         = "Weekly_Bus_Trips"
	ColTrainTrips       = "Weekly_Train_Trips"
	ColCarpoolTrips     = "Weekly_Carpool_Trips"
	ColVanpoolTrips     = "Weekly_Vanpool_Trips"
	ColWalkTrips        = "Weekly_Walk_Trips"
	ColBikeTrips        = "Weekly_Bike_Trips"
	ColTeleworkDays     = "Weekly_Telework_Days"
	ColTotalWeeklyTrips = "Total_Weekly_Trips"
	ColVMTPerEmployee   = "VMT_per_Employee"
	ColResponseRate     = "Response_Rate"
)

// Columns lists every column the loader requires, in the order of the
// survey_records table.
func Columns() []string {
	return []string{
		ColCycle, ColLocation, ColOrganization, ColTotalEmployees, ColSurveysReturned,
		ColDriveAloneRate, ColDriveAloneTrips, ColBusTrips, ColTrainTrips,
		ColCarpoolTrips, ColVanpoolTrips, ColWalkTrips, ColBikeTrips,
		ColTeleworkDays, ColTotalWeeklyTrips, ColVMTPerEmployee, ColResponseRate,
	}
}

// countColumns maps each integer count column to its record field.
func countColumns(r *model.SurveyRecord) []struct {
	name string
	dst  *int
} {
	return []struct {
		name string
		dst  *int
	}{
		{ColTotalEmployees, &r.TotalEmployees},
		{ColSurveysReturned, &r.SurveysReturned},
		{ColDriveAloneTrips, &r.DriveAloneTrips},
		{ColBusTrips, &r.BusTrips},
		{ColTrainTrips, &r.TrainTrips},
		{ColCarpoolTrips, &r.CarpoolTrips},
		{ColVanpoolTrips, &r.VanpoolTrips},
		{ColWalkTrips, &r.WalkTrips},
		{ColBikeTrips, &r.BikeTrips},
		{ColTeleworkDays, &r.TeleworkDays},
		{ColTotalWeeklyTrips, &r.TotalWeeklyTrips},
	}
}

// optionalColumns maps each nullable column to its record field.
func optionalColumns(r *model.SurveyRecord) []struct {
	name string
	dst  **float64
} {
	return []struct {
		name string
		dst  **float64
	}{
		{ColDriveAloneRate, &r.DriveAloneRate},
		{ColVMTPerEmployee, &r.VMTPerEmployee},
		{ColResponseRate, &r.ResponseRate},
	}
}
