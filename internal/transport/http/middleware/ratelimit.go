package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"elms/internal/platform/logger"
	"elms/internal/transport/http/api"
)

const (
	maxKeyedBodyBytes = 64 * 1024
	sweepEvery        = 1024
)

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*rateLimiter)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		if fn != nil {
			rl.keyFn = fn
		}
	}
}

type rateWindow struct {
	count int
	reset time.Time
}

type rateDecision struct {
	allowed   bool
	remaining int
	resetIn   int
}

// rateLimiter counts requests per key in fixed windows. Expired windows are
// swept periodically so idle clients do not accumulate.
type rateLimiter struct {
	limit  int
	window time.Duration
	keyFn  RateLimitKeyFunc

	mu      sync.Mutex
	windows map[string]*rateWindow
	calls   int
}

func newRateLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc) *rateLimiter {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	return &rateLimiter{limit: limit, window: window, keyFn: keyFn, windows: map[string]*rateWindow{}}
}

func (rl *rateLimiter) take(key string, now time.Time) rateDecision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.calls++
	if rl.calls%sweepEvery == 0 {
		for k, w := range rl.windows {
			if now.After(w.reset) {
				delete(rl.windows, k)
			}
		}
	}

	w, ok := rl.windows[key]
	if !ok || now.After(w.reset) {
		w = &rateWindow{reset: now.Add(rl.window)}
		rl.windows[key] = w
	}
	w.count++
	return rateDecision{
		allowed:   w.count <= rl.limit,
		remaining: max(rl.limit-w.count, 0),
		resetIn:   ceilSeconds(w.reset.Sub(now)),
	}
}

// enforce reports whether the request may continue. Refusals are written here.
func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}
	key := rl.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	d := rl.take(key, time.Now())

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
	h.Set("X-RateLimit-Reset", strconv.Itoa(d.resetIn))
	if d.allowed {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(d.resetIn, 1)))
	logger.FromContext(r.Context()).Sugar().Warnw("rate limit exceeded",
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", rl.limit,
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// RateLimit applies one budget per signed-in user, or per client IP for
// anonymous callers.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window, actorOrIPKey)
	for _, opt := range opts {
		opt(rl)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.enforce(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter budgets on login and on the leave
// mutations: a quarter of baseLimit for login, counted per IP and per email,
// and half of it per actor for submissions, decisions and manual rollovers.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	authLimit := max(baseLimit/4, 1)
	loginByIP := newRateLimiter(authLimit, window, clientIPKey)
	loginByEmail := newRateLimiter(authLimit, window, AuthEmailOrIPKey("email"))
	mutationsByActor := newRateLimiter(max(baseLimit/2, 1), window, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var limiters []*rateLimiter
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				limiters = []*rateLimiter{loginByIP, loginByEmail}
			case sensitiveScopeActor:
				limiters = []*rateLimiter{mutationsByActor}
			}
			for _, rl := range limiters {
				if !rl.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

type sensitiveRoute struct {
	method string
	prefix string
	suffix string
	exact  bool
	scope  sensitiveScope
}

var sensitiveRoutes = []sensitiveRoute{
	{method: http.MethodPost, prefix: "/auth/login", exact: true, scope: sensitiveScopeAuth},
	{method: http.MethodPost, prefix: "/leave/requests", exact: true, scope: sensitiveScopeActor},
	{method: http.MethodPatch, prefix: "/leave/requests/", suffix: "/status", scope: sensitiveScopeActor},
	{method: http.MethodPost, prefix: "/jobs/rollover/run", exact: true, scope: sensitiveScopeActor},
}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	if r == nil {
		return sensitiveScopeNone
	}
	path := strings.TrimPrefix(strings.TrimSpace(r.URL.Path), "/api/v1")
	for _, route := range sensitiveRoutes {
		if r.Method != route.method {
			continue
		}
		if route.exact && path == route.prefix {
			return route.scope
		}
		if !route.exact && strings.HasPrefix(path, route.prefix) && strings.HasSuffix(path, route.suffix) {
			return route.scope
		}
	}
	return sensitiveScopeNone
}

// AuthEmailOrIPKey keys by the normalised email in a JSON body and restores
// the body for the next handler.
func AuthEmailOrIPKey(field string) RateLimitKeyFunc {
	if strings.TrimSpace(field) == "" {
		field = "email"
	}
	return func(r *http.Request) string {
		if email := peekJSONString(r, field); email != "" {
			return "email:" + strings.ToLower(email)
		}
		return clientIPKey(r)
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return "ip:" + first
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil || host == "" {
		return "ip:" + strings.TrimSpace(r.RemoteAddr)
	}
	return "ip:" + host
}

func peekJSONString(r *http.Request, field string) string {
	if r == nil || r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxKeyedBodyBytes))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}
