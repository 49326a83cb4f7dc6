package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kilianp07/ctr/core/model"
)

// ReadCSV parses survey rows from r. The header must carry every column of
// Columns; extra columns are ignored. Rows are numbered from 1, header
// excluded.
func ReadCSV(r io.Reader) ([]model.SurveyRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &model.SchemaViolation{Column: ColCycle, Msg: "empty input"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	for _, c := range Columns() {
		if _, ok := idx[c]; !ok {
			return nil, &model.SchemaViolation{Column: c, Msg: "missing column"}
		}
	}
	cr.FieldsPerRecord = len(header)

	var out []model.SurveyRecord
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &model.SchemaViolation{Column: "", Row: row, Msg: pe.Err.Error()}
			}
			return nil, err
		}
		rec, err := parseRow(fields, idx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadCSV parses r and validates the rows into a table.
func LoadCSV(r io.Reader) (*model.Table, error) {
	records, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	return model.NewTable(records)
}

func parseRow(fields []string, idx map[string]int, row int) (model.SurveyRecord, error) {
	get := func(col string) string { return strings.TrimSpace(fields[idx[col]]) }
	rec := model.SurveyRecord{
		Cycle:          model.Cycle(get(ColCycle)),
		OrganizationID: get(ColOrganization),
	}
	g, err := model.ParseGeography(get(ColLocation))
	if err != nil {
		return rec, &model.SchemaViolation{Column: ColLocation, Row: row, Msg: err.Error()}
	}
	rec.Geography = g
	if rec.OrganizationID == "" {
		return rec, &model.SchemaViolation{Column: ColOrganization, Row: row, Msg: "empty organization name"}
	}
	for _, c := range countColumns(&rec) {
		v, err := parseCount(get(c.name))
		if err != nil {
			return rec, &model.SchemaViolation{Column: c.name, Row: row, Msg: err.Error()}
		}
		*c.dst = v
	}
	for _, c := range optionalColumns(&rec) {
		v, err := parseOptional(get(c.name))
		if err != nil {
			return rec, &model.SchemaViolation{Column: c.name, Row: row, Msg: err.Error()}
		}
		*c.dst = v
	}
	return rec, nil
}

// parseCount accepts integers and whole floats such as "120.0". An empty
// cell counts as zero trips.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole count: %q", s)
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("count out of range: %q", s)
	}
	return int(f), nil
}

// parseOptional returns nil for empty and NA cells. A trailing percent sign
// scales the value to a fraction.
func parseOptional(s string) (*float64, error) {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return nil, nil
	}
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		scale = 100
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	return model.Float(f / scale), nil
}

// CSVSource reads a survey CSV file on every Load.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource { return &CSVSource{Path: path} }

func (s *CSVSource) Name() string { return "csv:" + s.Path }

func (s *CSVSource) Load(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadCSV(f)
}
