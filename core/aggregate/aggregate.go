// Package aggregate groups survey records by scope and cycle and applies the
// rate primitives to each group. Citywide groups are rebuilt from the union
// of raw records, never averaged from the per-geography results.
package aggregate

import (
	"github.com/kilianp07/ctr/core/model"
)

// Selection filters the groups to compute. Empty fields select everything.
type Selection struct {
	Geographies []model.Scope `json:"geographies"`
	Cycles      []model.Cycle `json:"cycles"`
}

// Group is the record subset of one scope in one cycle.
type Group struct {
	Scope   model.Scope
	Cycle   model.Cycle
	Records []model.SurveyRecord
}

// Aggregate returns one group per requested (scope, cycle) that has at least
// one record. Scopes keep request order and cycles are chronological.
func Aggregate(t *model.Table, sel Selection) []Group {
	scopes := sel.Geographies
	if len(scopes) == 0 {
		scopes = model.AllScopes()
	}
	cycles := sel.Cycles
	if len(cycles) == 0 {
		cycles = t.Cycles()
	} else {
		cycles = dedupe(cycles)
		model.SortCycles(cycles)
	}
	var out []Group
	for _, s := range dedupeScopes(scopes) {
		for _, c := range cycles {
			recs := t.Select(s, c)
			if len(recs) == 0 {
				continue
			}
			out = append(out, Group{Scope: s, Cycle: c, Records: recs})
		}
	}
	return out
}

func dedupe(cs []model.Cycle) []model.Cycle {
	seen := map[model.Cycle]bool{}
	out := make([]model.Cycle, 0, len(cs))
	for _, c := range cs {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func dedupeScopes(ss []model.Scope) []model.Scope {
	seen := map[model.Scope]bool{}
	out := make([]model.Scope, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
