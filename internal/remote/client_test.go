package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mzahid/tartil/internal/domain"
	"github.com/mzahid/tartil/internal/logger"
)

func newTestClient(url string) *Client {
	return NewClient(url, "test-key", nil, logger.Default())
}

func TestUpsertProgress(t *testing.T) {
	var gotPath, gotPrefer, gotAPIKey string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotPrefer = r.Header.Get("Prefer")
		gotAPIKey = r.Header.Get("apikey")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	rec := domain.ProgressRecord{Level: 3, CompletedUnits: 7, AccuracyScore: 88, LastUpdated: time.Now()}
	if err := c.UpsertProgress(context.Background(), "user-xyz", rec); err != nil {
		t.Fatalf("UpsertProgress failed: %v", err)
	}

	if gotPath != "/rest/v1/learning_progress?on_conflict=owner_id,level" {
		t.Errorf("Unexpected request path: %s", gotPath)
	}
	if gotPrefer != "resolution=merge-duplicates" {
		t.Errorf("Expected merge-duplicates Prefer header, got %q", gotPrefer)
	}
	if gotAPIKey != "test-key" {
		t.Errorf("Expected apikey header, got %q", gotAPIKey)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(gotBody, &rows); err != nil {
		t.Fatalf("Body is not a JSON array: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0]["owner_id"] != "user-xyz" {
		t.Errorf("Expected owner scoping in body, got %v", rows[0]["owner_id"])
	}
	if rows[0]["completed_units"] != float64(7) {
		t.Errorf("Expected completed_units 7, got %v", rows[0]["completed_units"])
	}
}

func TestUpsertProgress_ServerErrorReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.UpsertProgress(context.Background(), "u", domain.ProgressRecord{Level: 1})
	if err == nil {
		t.Fatal("Expected error on 500")
	}
}

func TestQueryProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("owner_id"); got != "eq.user-xyz" {
			t.Errorf("Expected owner_id=eq.user-xyz, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"owner_id":"user-xyz","level":1,"completed_units":5,"accuracy_score":90,"last_updated":"2026-08-01T10:00:00Z"},
			{"owner_id":"user-xyz","level":2,"completed_units":2,"accuracy_score":75,"last_updated":"2026-08-02T10:00:00Z"}
		]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	recs, err := c.QueryProgress(context.Background(), "user-xyz")
	if err != nil {
		t.Fatalf("QueryProgress failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recs))
	}
	if recs[0].Level != 1 || recs[0].CompletedUnits != 5 {
		t.Errorf("Unexpected first record: %+v", recs[0])
	}
}

func TestQueryProgress_ErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.QueryProgress(context.Background(), "u"); err == nil {
		t.Fatal("Expected error on 401")
	}
}

func TestListRecordings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("order"); got != "created_at.desc" {
			t.Errorf("Expected newest-first ordering, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"rec-1","owner_id":"u","title":"Tajweed session","duration_seconds":61}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	recs, err := c.ListRecordings(context.Background(), "u")
	if err != nil {
		t.Fatalf("ListRecordings failed: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "rec-1" || recs[0].Duration != 61 {
		t.Errorf("Unexpected recordings: %+v", recs)
	}
}

func TestDeleteRecording_ScopedByOwner(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.DeleteRecording(context.Background(), "user-xyz", "rec-9"); err != nil {
		t.Fatalf("DeleteRecording failed: %v", err)
	}
	if gotQuery != "id=eq.rec-9&owner_id=eq.user-xyz" {
		t.Errorf("Expected id and owner filters, got %q", gotQuery)
	}
}

func TestDeleteRecording_FailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.DeleteRecording(context.Background(), "u", "rec-1"); err == nil {
		t.Fatal("Expected error on failed delete")
	}
}

func TestNotConfigured(t *testing.T) {
	c := newTestClient("")
	ctx := context.Background()

	if err := c.UpsertProgress(ctx, "u", domain.ProgressRecord{Level: 1}); err != ErrNotConfigured {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	if _, err := c.QueryProgress(ctx, "u"); err != ErrNotConfigured {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	if _, err := c.ListRecordings(ctx, "u"); err != ErrNotConfigured {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	if err := c.DeleteRecording(ctx, "u", "r"); err != ErrNotConfigured {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}
