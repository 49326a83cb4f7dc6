// Package dataset defines where survey tables come from.
package dataset

import (
	"context"

	"github.com/kilianp07/ctr/core/model"
)

// Source loads a validated survey table. Implementations return a
// *model.SchemaViolation when the input does not match the survey schema.
type Source interface {
	Load(ctx context.Context) (*model.Table, error)
	Name() string
}

// Static serves an already built table.
type Static struct {
	Table *model.Table
	Label string
}

func (s Static) Load(ctx context.Context) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Table, nil
}

func (s Static) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// FromRecords validates records into a Static source.
func FromRecords(label string, records []model.SurveyRecord) (Static, error) {
	t, err := model.NewTable(records)
	if err != nil {
		return Static{}, err
	}
	return Static{Table: t, Label: label}, nil
}
