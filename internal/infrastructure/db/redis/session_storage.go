package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orderflow/orderflow/internal/core/ports"
)

// SessionStorage keeps browser-scoped session values in Redis.
// Key format: session:<browser_id>:<key>
type SessionStorage struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStorage wraps client. Every read or write pushes the expiry of
// the touched key ttl into the future.
func NewSessionStorage(client *redis.Client, ttl time.Duration) *SessionStorage {
	return &SessionStorage{client: client, ttl: ttl}
}

func (s *SessionStorage) Scope(browserID string) ports.SessionStorage {
	return &sessionScope{storage: s, browserID: browserID}
}

type sessionScope struct {
	storage   *SessionStorage
	browserID string
}

func (sc *sessionScope) key(k string) string {
	return fmt.Sprintf("session:%s:%s", sc.browserID, k)
}

func (sc *sessionScope) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := sc.storage.client.GetEx(ctx, sc.key(key), sc.storage.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get: %w", err)
	}
	return val, true, nil
}

func (sc *sessionScope) Set(ctx context.Context, key, value string) error {
	if err := sc.storage.client.Set(ctx, sc.key(key), value, sc.storage.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (sc *sessionScope) Delete(ctx context.Context, key string) error {
	if err := sc.storage.client.Del(ctx, sc.key(key)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
