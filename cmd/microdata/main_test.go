package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hyperifyio/gomicrodata/internal/app"
)

// Smoke test: run succeeds against a server with microdata.
func TestRun_Succeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<div itemscope itemtype="T"><span itemprop="name">x</span></div>`))
	}))
	defer srv.Close()

	cfg := app.Config{UserAgent: "test", Timeout: 2 * time.Second, MaxAttempts: 1}
	if err := run(cfg, []string{srv.URL}); err != nil {
		t.Fatalf("run: %v", err)
	}
}

// Exit code policy: a failing locator surfaces as an error from run().
func TestRun_FailingLocatorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	cfg := app.Config{Timeout: 2 * time.Second, MaxAttempts: 1}
	if err := run(cfg, []string{srv.URL}); err == nil {
		t.Fatal("expected error")
	}
}
