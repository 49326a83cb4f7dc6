package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	coreaudit "github.com/kilianp07/ctr/core/audit"
	"github.com/kilianp07/ctr/core/model"
)

type memStore struct{ recs []coreaudit.Record }

func (m *memStore) Audit(_ context.Context, q coreaudit.Query) ([]coreaudit.Record, error) {
	var res []coreaudit.Record
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func TestLogHandler_Filters(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &memStore{recs: []coreaudit.Record{
		{ID: "1", Timestamp: now, Trigger: "api", Scopes: []model.Scope{model.ScopeDowntown}},
		{ID: "2", Timestamp: now.Add(time.Hour), Trigger: "snapshot", Scopes: []model.Scope{model.ScopeCitywide}},
	}}
	h := NewLogHandler(store)

	req := httptest.NewRequest("GET", "/api/audit?start="+now.Add(time.Minute).Format(time.RFC3339)+"&scope=city", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []coreaudit.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].ID != "2" {
		t.Fatalf("unexpected records %#v", out)
	}
}

func TestLogHandler_Empty(t *testing.T) {
	rr := httptest.NewRecorder()
	NewLogHandler(&memStore{}).ServeHTTP(rr, httptest.NewRequest("GET", "/api/audit?trigger=cli", nil))
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty array got %s", rr.Body.String())
	}
}

func TestLogHandler_BadTime(t *testing.T) {
	rr := httptest.NewRecorder()
	NewLogHandler(&memStore{}).ServeHTTP(rr, httptest.NewRequest("GET", "/api/audit?end=yesterday", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}
