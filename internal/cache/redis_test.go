package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/izikbr/calorific2-app/internal/model"
)

func newTestCache(t *testing.T) (*RedisEstimateCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisEstimateCache(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewRedisEstimateCacheRejectsBadURL(t *testing.T) {
	t.Parallel()
	if _, err := NewRedisEstimateCache(context.Background(), "http://not-redis"); err == nil {
		t.Fatalf("expected invalid redis url to fail")
	}
}

func TestNewRedisEstimateCacheUnreachable(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisEstimateCache(ctx, "redis://"+addr+"/0"); err == nil {
		t.Fatalf("expected closed server to fail the ping")
	}
}

func TestRedisEstimateCacheGetPutExpiry(t *testing.T) {
	t.Parallel()
	c, mr := newTestCache(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing-key"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	items := []model.FoodEstimate{{Name: "Falafel", Calories: 333, ProteinG: 13}}
	if err := c.Put(ctx, "k1", "text", items, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists(keyPrefix + "k1") {
		t.Fatalf("expected key stored under the estimate prefix")
	}
	if ttl := mr.TTL(keyPrefix + "k1"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %s", ttl)
	}
	got, ok, err := c.Get(ctx, "k1")
	if err != nil || !ok || len(got) != 1 || got[0].Name != "Falafel" || got[0].Calories != 333 {
		t.Fatalf("unexpected get: %+v ok=%v err=%v", got, ok, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, err := c.Get(ctx, "k1"); err != nil || ok {
		t.Fatalf("expected expired entry to miss, ok=%v err=%v", ok, err)
	}
}

func TestRedisEstimateCacheCorruptEntry(t *testing.T) {
	t.Parallel()
	c, mr := newTestCache(t)
	if err := mr.Set(keyPrefix+"bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := c.Get(context.Background(), "bad"); err == nil || ok {
		t.Fatalf("expected decode error, ok=%v err=%v", ok, err)
	}
}

func TestRedisEstimateCachePurgeOnlyOwnKeys(t *testing.T) {
	t.Parallel()
	c, mr := newTestCache(t)
	ctx := context.Background()

	items := []model.FoodEstimate{{Name: "Toast", Calories: 75}}
	for _, key := range []string{"a", "b", "c"} {
		if err := c.Put(ctx, key, "barcode", items, time.Hour); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	if err := mr.Set("session:42", "keep me"); err != nil {
		t.Fatalf("seed foreign key: %v", err)
	}

	n, err := c.Purge(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 keys purged, got %d", n)
	}
	if !mr.Exists("session:42") {
		t.Fatalf("expected keys outside the prefix to survive")
	}
	if n, err := c.Purge(ctx); err != nil || n != 0 {
		t.Fatalf("expected empty second purge, n=%d err=%v", n, err)
	}
}
