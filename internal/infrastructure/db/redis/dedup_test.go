package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestDedup(t *testing.T, ttl time.Duration) (*DedupChecker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDedupChecker(client, ttl), mr
}

func TestDedupChecker_FirstUse(t *testing.T) {
	d, mr := newTestDedup(t, time.Minute)
	ctx := context.Background()

	first, err := d.FirstUse(ctx, "tok")
	if err != nil || !first {
		t.Fatalf("first use = %v, %v", first, err)
	}
	if !mr.Exists("dedup:submission:tok") {
		t.Fatal("expected the token key to be written")
	}
	if ttl := mr.TTL("dedup:submission:tok"); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}

	again, err := d.FirstUse(ctx, "tok")
	if err != nil || again {
		t.Fatalf("second use = %v, %v", again, err)
	}
}

func TestDedupChecker_ExpiredTokenIsFree(t *testing.T) {
	d, mr := newTestDedup(t, time.Minute)
	ctx := context.Background()

	if ok, _ := d.FirstUse(ctx, "tok"); !ok {
		t.Fatal("first use rejected")
	}
	mr.FastForward(2 * time.Minute)
	if ok, _ := d.FirstUse(ctx, "tok"); !ok {
		t.Fatal("token should be accepted after expiry")
	}
}

func TestDedupChecker_DefaultTTL(t *testing.T) {
	d, _ := newTestDedup(t, 0)
	if d.ttl != dedupTTL {
		t.Fatalf("ttl = %v, want %v", d.ttl, dedupTTL)
	}
}

func TestDedupChecker_UnreachableRedis(t *testing.T) {
	d, mr := newTestDedup(t, time.Minute)
	mr.Close()
	if _, err := d.FirstUse(context.Background(), "tok"); err == nil {
		t.Fatal("expected an error when redis is down")
	}
}
