package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"elms/internal/platform/cache"
	"elms/internal/platform/logger"
	"elms/internal/transport/http/api"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

type IdempotencyStore interface {
	Check(ctx context.Context, userID, endpoint, key, requestHash string) (cache.StoredResponse, bool, error)
	Save(ctx context.Context, userID, endpoint, key string, response cache.StoredResponse) error
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotent replays the first response for a repeated Idempotency-Key from
// the same user. Requests without the header are not affected.
func Idempotent(store IdempotencyStore, endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())
			if len(key) > maxIdempotencyKeyLen {
				api.Fail(w, http.StatusBadRequest, "invalid_idempotency_key", "idempotency key too long", requestID)
				return
			}
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
				return
			}

			raw, err := io.ReadAll(r.Body)
			if err != nil {
				api.FailError(w, err, "invalid_payload", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			hash := RequestHash(raw)
			log := logger.FromContext(r.Context()).Sugar()

			stored, found, err := store.Check(r.Context(), user.UserID, endpoint, key, hash)
			switch {
			case errors.Is(err, cache.ErrIdempotencyConflict):
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", requestID)
				return
			case err != nil:
				log.Warnw("idempotency lookup failed", "endpoint", endpoint, "err", err)
			case found:
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(headerReplayed, "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status >= http.StatusInternalServerError {
				return
			}
			if err := store.Save(r.Context(), user.UserID, endpoint, key, cache.StoredResponse{
				RequestHash: hash,
				Status:      capture.status,
				Body:        bytes.TrimSpace(capture.body.Bytes()),
			}); err != nil {
				log.Warnw("idempotency save failed", "endpoint", endpoint, "err", err)
			}
		})
	}
}
