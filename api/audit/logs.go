package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	coreaudit "github.com/kilianp07/ctr/core/audit"
	"github.com/kilianp07/ctr/core/model"
)

// Querier reads the audit log.
type Querier interface {
	Audit(ctx context.Context, q coreaudit.Query) ([]coreaudit.Record, error)
}

// NewLogHandler returns an HTTP handler exposing the audit log via GET
// /api/audit?start=&end=&scope=&cycle=&trigger=. Times are RFC3339.
func NewLogHandler(q Querier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := q.Audit(r.Context(), query)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []coreaudit.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func parseQuery(r *http.Request) (coreaudit.Query, error) {
	v := r.URL.Query()
	q := coreaudit.Query{Trigger: v.Get("trigger"), Cycle: model.Cycle(v.Get("cycle"))}
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"start", &q.Start}, {"end", &q.End}} {
		s := v.Get(p.name)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, fmt.Errorf("invalid %s: %w", p.name, err)
		}
		*p.dst = t
	}
	if s := v.Get("scope"); s != "" {
		scope, err := model.ParseScope(s)
		if err != nil {
			return q, err
		}
		q.Scope = scope
	}
	return q, nil
}
