package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"elms/internal/domain/auth"
	"elms/internal/platform/cache"
)

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}

func newIdempotentHandler(t *testing.T) (http.Handler, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"r-1"}}`))
	})
	return Idempotent(cache.NewIdempotencyStore(client, time.Hour), "leave.submit")(inner), &calls
}

func idempotentRequest(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests", strings.NewReader(body))
	req = req.WithContext(WithUser(context.Background(), auth.UserContext{UserID: "u-1", RoleName: auth.RoleEmployee}))
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	return req
}

func TestIdempotentReplaysFirstResponse(t *testing.T) {
	handler, calls := newIdempotentHandler(t)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idempotentRequest(`{"leaveType":"Casual"}`, "k-1"))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idempotentRequest(`{"leaveType":"Casual"}`, "k-1"))

	if *calls != 1 {
		t.Fatalf("expected one handler call, got %d", *calls)
	}
	if second.Code != http.StatusCreated || second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Body.String() != `{"success":true,"data":{"id":"r-1"}}` {
		t.Fatalf("unexpected replay body %q", second.Body.String())
	}
}

func TestIdempotentRejectsChangedPayload(t *testing.T) {
	handler, calls := newIdempotentHandler(t)

	handler.ServeHTTP(httptest.NewRecorder(), idempotentRequest(`{"leaveType":"Casual"}`, "k-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, idempotentRequest(`{"leaveType":"Sick"}`, "k-1"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if *calls != 1 {
		t.Fatalf("expected one handler call, got %d", *calls)
	}
}

func TestIdempotentWithoutKeyPassesThrough(t *testing.T) {
	handler, calls := newIdempotentHandler(t)
	handler.ServeHTTP(httptest.NewRecorder(), idempotentRequest(`{}`, ""))
	handler.ServeHTTP(httptest.NewRecorder(), idempotentRequest(`{}`, ""))
	if *calls != 2 {
		t.Fatalf("expected two handler calls, got %d", *calls)
	}
}
