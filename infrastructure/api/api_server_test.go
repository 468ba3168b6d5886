package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/helixml/segalloc"
	"github.com/helixml/segalloc/infrastructure/api"
	"github.com/helixml/segalloc/internal/log"
)

func newTestClient(t *testing.T) *segalloc.Client {
	t.Helper()
	client, err := segalloc.New(
		segalloc.WithDataDir(t.TempDir()),
		segalloc.WithLogger(log.Discard().Slog()),
	)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAPIServer_Routes(t *testing.T) {
	client := newTestClient(t)
	apiServer := api.NewAPIServer(client, []string{"https://example.com"})
	handler := apiServer.Handler()

	t.Run("GET /health returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if !strings.Contains(w.Body.String(), `"healthy"`) {
			t.Errorf("body = %s, want healthy status", w.Body.String())
		}
	})

	t.Run("GET /api/v1/documents returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
		}
	})

	t.Run("GET /api/v1/sessions returns 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("unknown session returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/missing", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("CORS preflight echoes allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
			t.Errorf("Access-Control-Allow-Origin = %q, want https://example.com", got)
		}
	})
}

func TestAPIServer_HealthAfterClose(t *testing.T) {
	client, err := segalloc.New(
		segalloc.WithDataDir(t.TempDir()),
		segalloc.WithLogger(log.Discard().Slog()),
	)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	handler := api.NewAPIServer(client, nil).Handler()
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}
