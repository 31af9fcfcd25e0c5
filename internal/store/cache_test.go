package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangang/bizboard/internal/store"
	"github.com/huangang/bizboard/internal/store/storetest"
	"github.com/redis/go-redis/v9"
)

// unreachableRedis points at a port nothing listens on.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  50 * time.Millisecond,
		ReadTimeout:  50 * time.Millisecond,
		WriteTimeout: 50 * time.Millisecond,
		MaxRetries:   -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCachedProfiles_FallsBackWhenRedisDown(t *testing.T) {
	inner := storetest.Store(t)
	storetest.Tenant(t, inner, 1, "acme", nil)

	cached := store.NewCachedProfiles(inner, unreachableRedis(t), time.Minute)
	ctx := context.Background()

	profile, err := cached.GetProfileBySubdomain(ctx, "acme")
	if err != nil {
		t.Fatalf("GetProfileBySubdomain() error = %v", err)
	}
	if profile.ID != 1 {
		t.Errorf("profile.ID = %d, expected 1", profile.ID)
	}

	if _, err := cached.GetProfileBySubdomain(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing label error = %v, expected ErrNotFound", err)
	}
}

func TestCachedProfiles_DelegatesOtherCalls(t *testing.T) {
	inner := storetest.Store(t)
	_, cfg := storetest.Tenant(t, inner, 1, "acme", storetest.Tabs())

	var s store.Store = store.NewCachedProfiles(inner, unreachableRedis(t), 0)
	got, err := s.GetActiveConfig(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetActiveConfig() error = %v", err)
	}
	if got.ID != cfg.ID {
		t.Errorf("config id = %d, expected %d", got.ID, cfg.ID)
	}
}
