package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// StoredResponse is the replayable outcome of a request made with an Idempotency-Key.
type StoredResponse struct {
	RequestHash string          `json:"requestHash"`
	Status      int             `json:"status"`
	Body        json.RawMessage `json:"body"`
}

type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

func idempotencyKey(userID, endpoint, key string) string {
	return fmt.Sprintf("elms:idem:%s:%s:%s", userID, endpoint, key)
}

// Check returns the stored response for key. A key reused with a different
// payload is a conflict.
func (s *IdempotencyStore) Check(ctx context.Context, userID, endpoint, key, requestHash string) (StoredResponse, bool, error) {
	if s == nil || s.client == nil {
		return StoredResponse{}, false, nil
	}
	raw, err := s.client.Get(ctx, idempotencyKey(userID, endpoint, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return StoredResponse{}, false, nil
	}
	if err != nil {
		return StoredResponse{}, false, err
	}
	var stored StoredResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		return StoredResponse{}, false, err
	}
	if stored.RequestHash != requestHash {
		return StoredResponse{}, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

// Save keeps the first response for key; a later save with another payload hash fails.
func (s *IdempotencyStore) Save(ctx context.Context, userID, endpoint, key string, response StoredResponse) error {
	if s == nil || s.client == nil {
		return nil
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return err
	}
	redisKey := idempotencyKey(userID, endpoint, key)
	ok, err := s.client.SetNX(ctx, redisKey, raw, s.ttl).Result()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	_, _, err = s.Check(ctx, userID, endpoint, key, response.RequestHash)
	return err
}
