package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"elms/internal/platform/logger"
)

type recordedRequest struct {
	method string
	route  string
	status int
}

type fakeHTTPRecorder struct {
	mu   sync.Mutex
	seen []recordedRequest
}

func (f *fakeHTTPRecorder) Record(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, recordedRequest{method: method, route: route, status: status})
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	rec := &fakeHTTPRecorder{}
	r := chi.NewRouter()
	r.Use(Metrics(rec))
	r.Get("/leave/requests/{requestID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leave/requests/abc", nil))

	if len(rec.seen) != 1 {
		t.Fatalf("expected one record, got %d", len(rec.seen))
	}
	got := rec.seen[0]
	if got.route != "/leave/requests/{requestID}" || got.status != http.StatusNotFound || got.method != http.MethodGet {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestLoggerWritesAccessLine(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := chi.NewRouter()
	r.Use(RequestID, Logger(zap.New(core)))
	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		logger.FromContext(req.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if logs.Len() != 2 {
		t.Fatalf("expected two log lines, got %d", logs.Len())
	}
	inside := logs.All()[0]
	if inside.ContextMap()["requestId"] != "req-42" {
		t.Fatalf("expected request scoped logger, got %v", inside.ContextMap())
	}
	access := logs.All()[1]
	if access.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 4xx, got %s", access.Level)
	}
	fields := access.ContextMap()
	if fields["route"] != "/ping" || fields["status"] != int64(http.StatusTeapot) {
		t.Fatalf("unexpected access fields: %v", fields)
	}
}

func TestRecovererTurnsPanicInto500(t *testing.T) {
	handler := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal_error") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestSecureHeadersAndBodyLimit(t *testing.T) {
	reached := false
	handler := SecureHeaders(true)(BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		buf := make([]byte, 64)
		if _, err := r.Body.Read(buf); err == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("missing security headers: %v", rec.Header())
	}
	if rec.Code != http.StatusRequestEntityTooLarge || reached {
		t.Fatalf("expected declared length to be refused up front, got %d", rec.Code)
	}

	streamed := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	streamed.ContentLength = -1
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, streamed)
	if rec.Code != http.StatusRequestEntityTooLarge || !reached {
		t.Fatalf("expected streamed body to trip the reader, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	SecureHeaders(false)(BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", strings.NewReader(strings.Repeat("x", 64))))
	if rec.Code != http.StatusNoContent || rec.Header().Get("Strict-Transport-Security") != "" || rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("unexpected read response %d %v", rec.Code, rec.Header())
	}
}
