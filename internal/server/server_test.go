package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/user/agentcatalog/internal/telemetry"
)

func newTestServer(t *testing.T, staticDir string) http.Handler {
	t.Helper()
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	})
	srv, err := New(Options{
		Addr:      "127.0.0.1:0",
		StaticDir: staticDir,
		Metrics:   telemetry.NewMetrics(),
		API:       api,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, "")
	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := gjson.Get(rec.Body.String(), "status").String(); got != "ok" {
		t.Fatalf("status field = %q", got)
	}
	if rec.Header().Get(telemetry.RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestAPIMounted(t *testing.T) {
	h := newTestServer(t, "")
	rec := get(t, h, "/api/templates")
	if got := gjson.Get(rec.Body.String(), "path").String(); got != "/api/templates" {
		t.Fatalf("path = %q", got)
	}
}

func TestMetricsExposeRequests(t *testing.T) {
	h := newTestServer(t, "")
	get(t, h, "/healthz")
	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "agentcatalog_http_requests_total") {
		t.Fatalf("metrics missing request counter:\n%s", rec.Body.String())
	}
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>catalog</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := newTestServer(t, dir)

	if rec := get(t, h, "/app.js"); !strings.Contains(rec.Body.String(), "console.log") {
		t.Fatalf("app.js body = %q", rec.Body.String())
	}
	if rec := get(t, h, "/templates/some-agent"); !strings.Contains(rec.Body.String(), "catalog") {
		t.Fatalf("fallback body = %q", rec.Body.String())
	}
}

func TestNoStaticDirIs404(t *testing.T) {
	h := newTestServer(t, "")
	if rec := get(t, h, "/index.html"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMissingStaticDir(t *testing.T) {
	if _, err := New(Options{StaticDir: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Fatal("expected error for missing static dir")
	}
}
