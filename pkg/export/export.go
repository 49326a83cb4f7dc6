package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/ctr/core/compliance"
	"github.com/kilianp07/ctr/core/summary"
)

// WriteJSON writes the report to w in JSON format.
func WriteJSON(w io.Writer, r summary.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one row per report entry using the fixed summary columns.
func WriteCSV(w io.Writer, r summary.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summary.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(summary.Rows(r)); err != nil {
		return err
	}
	return cw.Error()
}

// RankingColumns is the header of WriteRankingCSV.
var RankingColumns = []string{"group", "rank", "organization", "geography", "drive_alone_rate", "total_employees", "response_rate"}

// WriteRankingCSV writes the lowest then the highest worksites of rk.
func WriteRankingCSV(w io.Writer, rk compliance.Ranking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RankingColumns); err != nil {
		return err
	}
	groups := []struct {
		name  string
		sites []compliance.Worksite
	}{
		{"lowest", rk.Lowest},
		{"highest", rk.Highest},
	}
	for _, g := range groups {
		for i, s := range g.sites {
			resp := ""
			if s.ResponseRate != nil {
				resp = strconv.FormatFloat(*s.ResponseRate, 'f', -1, 64)
			}
			rec := []string{
				g.name,
				strconv.Itoa(i + 1),
				s.OrganizationID,
				s.Geography.String(),
				strconv.FormatFloat(s.DriveAloneRate, 'f', -1, 64),
				strconv.Itoa(s.TotalEmployees),
				resp,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
