package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/compliance"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/report"
	coresummary "github.com/kilianp07/ctr/core/summary"
	"github.com/kilianp07/ctr/pkg/export"
)

// Reporter computes reports over the current dataset.
type Reporter interface {
	Build(ctx context.Context, sel aggregate.Selection, trigger string) (coresummary.Report, error)
	Cycles(ctx context.Context) ([]model.Cycle, error)
	Ranking(ctx context.Context, scope model.Scope, cycle model.Cycle, n int) (compliance.Ranking, error)
}

// NewSummaryHandler serves GET /api/summary?scope=&cycle=. Both parameters
// repeat or take comma separated lists.
func NewSummaryHandler(rep Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sel, err := ParseSelection(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		out, err := rep.Build(r.Context(), sel, report.TriggerAPI)
		if err != nil {
			writeBuildError(w, err)
			return
		}
		writeJSON(w, out)
	})
}

// NewExportHandler serves GET /api/summary/export as CSV, or JSON with
// format=json.
func NewExportHandler(rep Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sel, err := ParseSelection(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		out, err := rep.Build(r.Context(), sel, report.TriggerAPI)
		if err != nil {
			writeBuildError(w, err)
			return
		}
		if r.URL.Query().Get("format") == "json" {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Disposition", `attachment; filename="ctr_summary.json"`)
			_ = export.WriteJSON(w, out)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="ctr_summary.csv"`)
		_ = export.WriteCSV(w, out)
	})
}

// NewCyclesHandler serves GET /api/cycles.
func NewCyclesHandler(rep Reporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cycles, err := rep.Cycles(r.Context())
		if err != nil {
			writeBuildError(w, err)
			return
		}
		if cycles == nil {
			cycles = []model.Cycle{}
		}
		writeJSON(w, cycles)
	})
}

// NewWorksitesHandler serves GET /api/worksites?scope=&cycle=&limit=. The
// scope defaults to Citywide and the cycle to the latest one.
func NewWorksitesHandler(rep Reporter, defaultLimit int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		scope := model.ScopeCitywide
		if s := q.Get("scope"); s != "" {
			v, err := model.ParseScope(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			scope = v
		}
		limit := defaultLimit
		if s := q.Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", s))
				return
			}
			limit = n
		}
		rk, err := rep.Ranking(r.Context(), scope, model.Cycle(q.Get("cycle")), limit)
		if err != nil {
			writeBuildError(w, err)
			return
		}
		if q.Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			_ = export.WriteRankingCSV(w, rk)
			return
		}
		writeJSON(w, rk)
	})
}

// ParseSelection reads the scope and cycle filters of r.
func ParseSelection(r *http.Request) (aggregate.Selection, error) {
	var sel aggregate.Selection
	q := r.URL.Query()
	for _, s := range splitList(q["scope"]) {
		scope, err := model.ParseScope(s)
		if err != nil {
			return sel, err
		}
		sel.Geographies = append(sel.Geographies, scope)
	}
	for _, s := range splitList(q["cycle"]) {
		c := model.Cycle(s)
		if err := c.Validate(); err != nil {
			return sel, err
		}
		sel.Cycles = append(sel.Cycles, c)
	}
	return sel, nil
}

func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

type errorBody struct {
	Error  string `json:"error"`
	Column string `json:"column,omitempty"`
	Row    int    `json:"row,omitempty"`
}

func writeBuildError(w http.ResponseWriter, err error) {
	var sv *model.SchemaViolation
	if errors.As(err, &sv) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(errorBody{Error: err.Error(), Column: sv.Column, Row: sv.Row})
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
