package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker records form submission tokens in Redis.
// Key format: dedup:submission:<token>
type DedupChecker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDedupChecker wraps client. Tokens are forgotten after ttl, or after
// an hour when ttl is not positive.
func NewDedupChecker(client *redis.Client, ttl time.Duration) *DedupChecker {
	if ttl <= 0 {
		ttl = dedupTTL
	}
	return &DedupChecker{client: client, ttl: ttl}
}

// FirstUse marks token as used with a single SET NX.
func (d *DedupChecker) FirstUse(ctx context.Context, token string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(token), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return ok, nil
}

func (d *DedupChecker) key(token string) string {
	return fmt.Sprintf("dedup:submission:%s", token)
}
