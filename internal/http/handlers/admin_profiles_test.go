package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quantifyai/refibot/internal/profile"
)

func adminTestServer(t *testing.T, repo profile.Repository) *httptest.Server {
	t.Helper()
	h := NewAdminProfilesHandler(repo, nil, nil)
	r := chi.NewRouter()
	r.Get("/admin/profiles", h.ListProfiles)
	r.Get("/admin/profiles/{chatID}", h.GetProfile)
	r.Get("/admin/profiles/{chatID}/transcript", h.GetTranscript)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func seedProfiles(t *testing.T, repo profile.Repository) {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, rec := range []*profile.Record{
		{ChatID: "60111111111", Name: "Aisha", LoanAmount: 300000, LifetimeSavings: 52000},
		{ChatID: "60122222222", Name: "Ben", OriginalLoanAmount: 450000, LifetimeSavings: 74520},
	} {
		rec.LastInteraction = base.Add(time.Duration(i) * time.Hour)
		if err := repo.Upsert(context.Background(), rec); err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}
}

func TestListProfiles(t *testing.T) {
	repo := profile.NewInMemoryRepository()
	seedProfiles(t, repo)
	srv := adminTestServer(t, repo)

	resp, err := http.Get(srv.URL + "/admin/profiles")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body ProfilesListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 || len(body.Profiles) != 2 {
		t.Fatalf("unexpected listing: %+v", body)
	}
	if body.Profiles[0].ChatID != "60122222222" {
		t.Fatalf("expected most recent first, got %q", body.Profiles[0].ChatID)
	}
}

func TestListProfilesEmpty(t *testing.T) {
	srv := adminTestServer(t, profile.NewInMemoryRepository())

	resp, err := http.Get(srv.URL + "/admin/profiles")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body ProfilesListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Profiles == nil || body.Count != 0 {
		t.Fatalf("expected empty array, got %+v", body)
	}
}

func TestGetProfile(t *testing.T) {
	repo := profile.NewInMemoryRepository()
	seedProfiles(t, repo)
	srv := adminTestServer(t, repo)

	resp, err := http.Get(srv.URL + "/admin/profiles/60111111111")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rec profile.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Name != "Aisha" || rec.LoanAmount != 300000 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	srv := adminTestServer(t, profile.NewInMemoryRepository())

	resp, err := http.Get(srv.URL + "/admin/profiles/60999999999")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetTranscriptUnconfigured(t *testing.T) {
	repo := profile.NewInMemoryRepository()
	seedProfiles(t, repo)
	srv := adminTestServer(t, repo)

	resp, err := http.Get(srv.URL + "/admin/profiles/60111111111/transcript")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when transcripts disabled, got %d", resp.StatusCode)
	}
}
