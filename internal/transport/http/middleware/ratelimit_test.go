package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elms/internal/domain/auth"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func loginRequest(email, remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"`+email+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	return req
}

func serveCode(h http.Handler, req *http.Request) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiterTakeWindows(t *testing.T) {
	rl := newRateLimiter(2, time.Minute, nil)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first := rl.take("user:a", start)
	assert.True(t, first.allowed)
	assert.Equal(t, 1, first.remaining)
	assert.Equal(t, 60, first.resetIn)

	assert.True(t, rl.take("user:a", start.Add(time.Second)).allowed)
	third := rl.take("user:a", start.Add(1500*time.Millisecond))
	assert.False(t, third.allowed)
	assert.Equal(t, 0, third.remaining)
	assert.Equal(t, 59, third.resetIn)

	assert.True(t, rl.take("user:b", start.Add(2*time.Second)).allowed, "keys are counted separately")
	assert.True(t, rl.take("user:a", start.Add(61*time.Second)).allowed, "a new window starts after reset")
}

func TestRateLimiterSweepsExpiredWindows(t *testing.T) {
	rl := newRateLimiter(1, time.Second, nil)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < sweepEvery-1; i++ {
		rl.take("ip:"+strconv.Itoa(i), start)
	}
	require.Len(t, rl.windows, sweepEvery-1)

	rl.take("ip:fresh", start.Add(time.Minute))
	assert.Len(t, rl.windows, 1)
}

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent)
	userCtx := WithUser(context.Background(), auth.UserContext{UserID: "user-1", RoleName: auth.RoleManager})

	first := httptest.NewRequest(http.MethodPatch, "/api/v1/leave/requests/r1/status", nil).WithContext(userCtx)
	first.RemoteAddr = "198.51.100.11:2222"
	second := httptest.NewRequest(http.MethodPatch, "/api/v1/leave/requests/r1/status", nil).WithContext(userCtx)
	second.RemoteAddr = "198.51.100.12:3333"

	assert.Equal(t, http.StatusNoContent, serveCode(limited, first))
	assert.Equal(t, http.StatusTooManyRequests, serveCode(limited, second), "same user from another address")
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent)

	assert.Equal(t, http.StatusNoContent, serveCode(limited, loginRequest("a@example.com", "203.0.113.10:4444")))
	assert.Equal(t, http.StatusTooManyRequests, serveCode(limited, loginRequest("b@example.com", "203.0.113.10:5555")))
}

func TestRateLimitWindowReset(t *testing.T) {
	limited := RateLimit(1, 40*time.Millisecond)(noContent)

	assert.Equal(t, http.StatusNoContent, serveCode(limited, loginRequest("a@example.com", "192.0.2.20:1111")))
	assert.Equal(t, http.StatusTooManyRequests, serveCode(limited, loginRequest("a@example.com", "192.0.2.20:1111")))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, http.StatusNoContent, serveCode(limited, loginRequest("a@example.com", "192.0.2.20:1111")))
}

func TestRateLimitReturnsRetryMetadata(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent)
	limited.ServeHTTP(httptest.NewRecorder(), loginRequest("a@example.com", "192.0.2.30:1234"))

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, loginRequest("a@example.com", "192.0.2.30:1234"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestAuthEmailKeyRestoresBody(t *testing.T) {
	req := loginRequest("Ana@Example.com", "192.0.2.40:1")
	assert.Equal(t, "email:ana@example.com", AuthEmailOrIPKey("")(req))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"Ana@Example.com"}`, buf.String())

	anonymous := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	anonymous.RemoteAddr = "192.0.2.41:1"
	assert.Equal(t, "ip:192.0.2.41", AuthEmailOrIPKey("email")(anonymous))
}

func TestSensitiveMutationRateLimitScope(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent)

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/dashboard", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		require.Equal(t, http.StatusNoContent, serveCode(limited, req), "read request %d", i+1)
	}

	userCtx := WithUser(context.Background(), auth.UserContext{UserID: "hr-1", RoleName: auth.RoleHR})
	for i, want := range []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/leave/requests/r1/status", nil).WithContext(userCtx)
		req.RemoteAddr = "198.51.100.41:9999"
		assert.Equal(t, want, serveCode(limited, req), "decision %d", i+1)
	}

	assert.Equal(t, http.StatusNoContent, serveCode(limited, loginRequest("x@example.com", "198.51.100.50:1")))
	assert.Equal(t, http.StatusTooManyRequests, serveCode(limited, loginRequest("x@example.com", "198.51.100.50:1")))
}

func TestSensitiveRateScope(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   sensitiveScope
	}{
		{method: http.MethodPost, path: "/api/v1/auth/login", want: sensitiveScopeAuth},
		{method: http.MethodPost, path: "/api/v1/leave/requests", want: sensitiveScopeActor},
		{method: http.MethodPatch, path: "/api/v1/leave/requests/abc/status", want: sensitiveScopeActor},
		{method: http.MethodPost, path: "/api/v1/jobs/rollover/run", want: sensitiveScopeActor},
		{method: http.MethodGet, path: "/api/v1/leave/requests", want: sensitiveScopeNone},
		{method: http.MethodPost, path: "/api/v1/leave/types", want: sensitiveScopeNone},
		{method: http.MethodGet, path: "/api/v1/leave/requests/abc/status", want: sensitiveScopeNone},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		assert.Equal(t, tc.want, sensitiveRateScope(req), "%s %s", tc.method, tc.path)
	}
}
