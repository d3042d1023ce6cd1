package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestLoggerPassesThrough(t *testing.T) {
	mw := RequestLogger(nil)
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected wrapped handler to run")
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status preserved, got %d", rec.Code)
	}
}

func TestRequestLoggerSkipsProbePaths(t *testing.T) {
	mw := RequestLogger(nil)
	for _, path := range []string{"/health", "/metrics"} {
		called := false
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		req := httptest.NewRequest(http.MethodGet, path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if !called {
			t.Fatalf("expected %s to pass through", path)
		}
	}
}

func TestStatusRecorderCapturesStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	rec.WriteHeader(http.StatusTeapot)
	if rec.status != http.StatusTeapot {
		t.Fatalf("expected captured status, got %d", rec.status)
	}
}
