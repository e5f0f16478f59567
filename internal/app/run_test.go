package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const personHTML = `<!doctype html>
<html><body>
  <div itemscope itemtype="http://schema.org/Person">
    <span itemprop="name">Jane</span>
    <img itemprop="photo" src="p.jpg">
  </div>
</body></html>`

type itemsDoc struct {
	Items []struct {
		Type       []string                     `json:"type"`
		ID         string                       `json:"id"`
		Properties map[string][]json.RawMessage `json:"properties"`
	} `json:"items"`
}

func TestRun_WritesOneDocumentPerLocator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(personHTML))
	}))
	defer srv.Close()

	var out bytes.Buffer
	cfg := Config{UserAgent: "test", Timeout: 2 * time.Second, MaxAttempts: 1}
	if err := Run(context.Background(), cfg, []string{srv.URL, srv.URL}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	dec := json.NewDecoder(strings.NewReader(out.String()))
	for i := 0; i < 2; i++ {
		var doc itemsDoc
		if err := dec.Decode(&doc); err != nil {
			t.Fatalf("decode doc %d: %v", i, err)
		}
		if len(doc.Items) != 1 {
			t.Fatalf("doc %d items = %d", i, len(doc.Items))
		}
		it := doc.Items[0]
		if len(it.Type) != 1 || it.Type[0] != "http://schema.org/Person" {
			t.Fatalf("type = %v", it.Type)
		}
		if string(it.Properties["name"][0]) != `"Jane"` {
			t.Fatalf("name = %s", it.Properties["name"][0])
		}
		if string(it.Properties["photo"][0]) != `"p.jpg"` {
			t.Fatalf("photo = %s", it.Properties["photo"][0])
		}
	}
}

func TestRun_FailingLocatorReportedAndSkipped(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(personHTML))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer bad.Close()

	var out bytes.Buffer
	cfg := Config{Timeout: 2 * time.Second, MaxAttempts: 1}
	err := Run(context.Background(), cfg, []string{bad.URL, good.URL}, &out)
	if err == nil {
		t.Fatal("expected error for failed locator")
	}
	// The good locator still produced a complete document, and the bad one
	// wrote nothing at all.
	var doc itemsDoc
	dec := json.NewDecoder(strings.NewReader(out.String()))
	if err := dec.Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Items) != 1 {
		t.Fatalf("items = %d", len(doc.Items))
	}
	if dec.More() {
		t.Fatal("expected exactly one document on output")
	}
}

func TestRun_EmptyItemsDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>no microdata here</p></body></html>`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	cfg := Config{Timeout: 2 * time.Second, MaxAttempts: 1}
	if err := Run(context.Background(), cfg, []string{srv.URL}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "{\n  \"items\": []\n}" {
		t.Fatalf("output = %q", got)
	}
}

func TestRun_PopulatesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(personHTML))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "pages")
	var out bytes.Buffer
	cfg := Config{Timeout: 2 * time.Second, MaxAttempts: 1, CacheDir: dir}
	if err := Run(context.Background(), cfg, []string{srv.URL}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	entries, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("cached bodies = %v, err = %v", entries, err)
	}
}
