package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"elms/internal/domain/scoring"
)

const scoreKeyPrefix = "elms:score:"

type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ScoreCache{client: client, ttl: ttl}
}

func (c *ScoreCache) GetReport(ctx context.Context, userID string) (scoring.Report, bool, error) {
	raw, err := c.client.Get(ctx, scoreKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return scoring.Report{}, false, nil
	}
	if err != nil {
		return scoring.Report{}, false, err
	}
	var report scoring.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return scoring.Report{}, false, err
	}
	return report, true, nil
}

func (c *ScoreCache) SetReport(ctx context.Context, userID string, report scoring.Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, scoreKeyPrefix+userID, raw, c.ttl).Err()
}

func (c *ScoreCache) DeleteReport(ctx context.Context, userID string) error {
	return c.client.Del(ctx, scoreKeyPrefix+userID).Err()
}

// DeleteAllReports removes every cached report and returns how many keys went.
func (c *ScoreCache) DeleteAllReports(ctx context.Context) (int, error) {
	deleted := 0
	iter := c.client.Scan(ctx, 0, scoreKeyPrefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			n, err := c.client.Del(ctx, batch...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += int(n)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	if len(batch) > 0 {
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			return deleted, err
		}
		deleted += int(n)
	}
	return deleted, nil
}
