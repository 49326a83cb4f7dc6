package summary

import (
	"strconv"

	"github.com/kilianp07/ctr/core/baseline"
	"github.com/kilianp07/ctr/core/model"
)

// Columns is the fixed export schema. Unavailable cells are empty.
var Columns = []string{
	"geography", "cycle", "worksites", "total_employees", "total_weekly_trips",
	"weighted_dar", "unweighted_dar", "ndat",
	"share_drive_alone", "share_bus", "share_train", "share_carpool",
	"share_vanpool", "share_walk", "share_bike", "share_telework",
	"response_rate", "vmt_per_employee", "da_trips_per_day",
	"change_from_program_start", "change_from_protocol_change",
	"change_from_prior", "change_from_five_back",
	"tmp_average", "tmp_target",
	"annual_vmt_avoided", "annual_co2_kg_avoided",
	"sites_meeting_response_threshold",
	"skipped_dar_records", "skipped_vmt_records",
}

// Rows flattens r into one row per entry, in Columns order.
func Rows(r Report) [][]string {
	out := make([][]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		row := []string{
			string(e.Scope),
			string(e.Cycle),
			strconv.Itoa(e.Worksites),
			strconv.Itoa(e.TotalEmployees),
			strconv.Itoa(e.TotalWeeklyTrips),
			cell(e.WeightedDAR),
			cell(e.UnweightedDAR),
			cell(e.NDAT),
		}
		for _, m := range model.Modes() {
			row = append(row, cell(e.Share(m)))
		}
		row = append(row,
			cell(e.ResponseRate),
			cell(e.VMTPerEmployee),
			cell(e.DATripsPerDay),
		)
		for _, k := range baseline.Kinds() {
			row = append(row, cell(e.Baseline(k).WeightedDAR))
		}
		row = append(row, cell(e.TMP.Average), cell(e.TMP.Target))
		if est := e.Impact.Estimate; est != nil {
			row = append(row, num(est.AnnualVMTAvoided), num(est.CO2KgAvoided))
		} else {
			row = append(row, "", "")
		}
		row = append(row,
			strconv.Itoa(e.Compliance.SitesMeetingThreshold),
			strconv.Itoa(e.SkippedDARRecords),
			strconv.Itoa(e.SkippedVMTRecords),
		)
		out = append(out, row)
	}
	return out
}

func cell(v model.Value) string {
	if f, ok := v.Get(); ok {
		return num(f)
	}
	return ""
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
