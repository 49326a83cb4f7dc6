// Package baseline resolves the reference cycles a summary is compared
// against and the deltas to each of them.
package baseline

import (
	"fmt"

	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/core/rates"
)

// Config selects the protocol-change reference. A cycle qualifies when it
// spans ProtocolChangeYear or lies within ProtocolChangeTolerance years of it.
type Config struct {
	ProtocolChangeYear      int `json:"protocol_change_year"`
	ProtocolChangeTolerance int `json:"protocol_change_tolerance"`
}

// DefaultConfig returns the 2007 survey protocol change with no tolerance.
func DefaultConfig() Config { return Config{ProtocolChangeYear: 2007} }

// Validate checks the protocol-change year is plausible.
func (c Config) Validate() error {
	if c.ProtocolChangeYear < 1000 {
		return fmt.Errorf("baseline: invalid protocol_change_year %d", c.ProtocolChangeYear)
	}
	if c.ProtocolChangeTolerance < 0 {
		return fmt.Errorf("baseline: protocol_change_tolerance must not be negative, got %d", c.ProtocolChangeTolerance)
	}
	return nil
}

// Kind names a reference point.
type Kind string

const (
	ProgramStart   Kind = "program_start"
	ProtocolChange Kind = "protocol_change"
	Prior          Kind = "prior"
	FiveBack       Kind = "five_back"
)

// Kinds lists every reference in report order.
func Kinds() []Kind { return []Kind{ProgramStart, ProtocolChange, Prior, FiveBack} }

// Reference is one resolved baseline. Deltas are current minus baseline and
// are unavailable when either side is.
type Reference struct {
	Kind  Kind        `json:"kind"`
	Cycle model.Cycle `json:"cycle,omitempty"`
	Found bool        `json:"found"`

	WeightedDAR    model.Value `json:"weighted_dar"`
	UnweightedDAR  model.Value `json:"unweighted_dar"`
	VMTPerEmployee model.Value `json:"vmt_per_employee"`
}

// Resolution holds the four references of one scope and cycle.
type Resolution struct {
	Scope      model.Scope `json:"scope"`
	Cycle      model.Cycle `json:"cycle"`
	References []Reference `json:"references"`
}

// Get returns the reference of kind k.
func (r Resolution) Get(k Kind) Reference {
	for _, ref := range r.References {
		if ref.Kind == k {
			return ref
		}
	}
	return missing(k, fmt.Errorf("%s: %w", k, model.ErrReferenceCycleMissing))
}

type cycleMetrics struct {
	weighted   model.Value
	unweighted model.Value
	vmt        model.Value
}

type scopeIndex struct {
	cycles   []model.Cycle
	pos      map[model.Cycle]int
	protocol int
	metrics  map[model.Cycle]cycleMetrics
}

// Resolver answers baseline queries for one table. It is built once and only
// read afterwards, so it can be shared between goroutines.
type Resolver struct {
	cfg    Config
	scopes map[model.Scope]*scopeIndex
}

// NewResolver indexes every scope of t.
func NewResolver(t *model.Table, cfg Config) *Resolver {
	r := &Resolver{cfg: cfg, scopes: map[model.Scope]*scopeIndex{}}
	for _, s := range model.AllScopes() {
		idx := &scopeIndex{
			cycles:   t.ScopeCycles(s),
			pos:      map[model.Cycle]int{},
			protocol: -1,
			metrics:  map[model.Cycle]cycleMetrics{},
		}
		best := 0
		for i, c := range idx.cycles {
			idx.pos[c] = i
			idx.metrics[c] = measure(t.Select(s, c))
			d, ok := yearDistance(c, cfg.ProtocolChangeYear)
			if !ok || d > cfg.ProtocolChangeTolerance {
				continue
			}
			if idx.protocol < 0 || d < best {
				idx.protocol, best = i, d
			}
		}
		r.scopes[s] = idx
	}
	return r
}

func measure(recs []model.SurveyRecord) cycleMetrics {
	u, uerr := rates.UnweightedRate(recs, rates.DriveAloneRate)
	v, verr := rates.UnweightedRate(recs, rates.VMTPerEmployee)
	return cycleMetrics{
		weighted:   model.ValueOf(rates.WeightedDAR(recs)),
		unweighted: model.ValueOf(u.Value, uerr),
		vmt:        model.ValueOf(v.Value, verr),
	}
}

// Cycles returns the chronological cycle list of scope.
func (r *Resolver) Cycles(scope model.Scope) []model.Cycle {
	idx, ok := r.scopes[scope]
	if !ok {
		return nil
	}
	return append([]model.Cycle(nil), idx.cycles...)
}

// ProtocolChangeCycle returns the qualifying cycle nearest the configured
// protocol change, preferring the earlier one on ties. It reports false when
// no cycle of scope is close enough.
func (r *Resolver) ProtocolChangeCycle(scope model.Scope) (model.Cycle, bool) {
	idx, ok := r.scopes[scope]
	if !ok || idx.protocol < 0 {
		return "", false
	}
	return idx.cycles[idx.protocol], true
}

// Resolve returns the references of cycle in scope. A reference that does not
// exist, or lies after cycle, is reported missing rather than replaced by the
// nearest available cycle.
func (r *Resolver) Resolve(scope model.Scope, cycle model.Cycle) (Resolution, error) {
	idx, ok := r.scopes[scope]
	if !ok {
		return Resolution{}, fmt.Errorf("baseline: unknown scope %q", scope)
	}
	pos, ok := idx.pos[cycle]
	if !ok {
		return Resolution{}, fmt.Errorf("baseline: %s has no records in %s: %w", scope, cycle, model.ErrUndefinedMetric)
	}
	current := idx.metrics[cycle]
	res := Resolution{Scope: scope, Cycle: cycle}
	targets := map[Kind]int{
		ProgramStart:   0,
		ProtocolChange: idx.protocol,
		Prior:          pos - 1,
		FiveBack:       pos - 5,
	}
	for _, k := range Kinds() {
		at := targets[k]
		if at < 0 || at > pos {
			res.References = append(res.References, missing(k, fmt.Errorf("%s of %s in %s: %w", k, cycle, scope, model.ErrReferenceCycleMissing)))
			continue
		}
		ref := idx.cycles[at]
		base := idx.metrics[ref]
		res.References = append(res.References, Reference{
			Kind:           k,
			Cycle:          ref,
			Found:          true,
			WeightedDAR:    current.weighted.Sub(base.weighted),
			UnweightedDAR:  current.unweighted.Sub(base.unweighted),
			VMTPerEmployee: current.vmt.Sub(base.vmt),
		})
	}
	return res, nil
}

func missing(k Kind, err error) Reference {
	v := model.Unavailable(err)
	return Reference{Kind: k, WeightedDAR: v, UnweightedDAR: v, VMTPerEmployee: v}
}

// yearDistance is zero when c spans year, otherwise the gap to its nearest
// end. Cycles without years never qualify.
func yearDistance(c model.Cycle, year int) (int, bool) {
	start, end, err := c.Years()
	if err != nil {
		return 0, false
	}
	switch {
	case year < start:
		return start - year, true
	case year > end:
		return year - end, true
	}
	return 0, true
}
