package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newCache(t *testing.T) (*CalendarCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCalendarCache(rdb, 5*time.Minute, nil), mr
}

func TestCalendarCache_RoundTrip(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()

	if _, hit := cache.Get(ctx, 1, 2024, 3); hit {
		t.Fatal("unexpected hit on empty cache")
	}

	counts := []DayCount{{Dia: "2024-03-15", Total: 3}}
	cache.Set(ctx, 1, 2024, 3, counts)

	got, hit := cache.Get(ctx, 1, 2024, 3)
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if len(got) != 1 || got[0].Dia != "2024-03-15" || got[0].Total != 3 {
		t.Errorf("got = %+v", got)
	}
}

func TestCalendarCache_TenantIsolation(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()

	cache.Set(ctx, 1, 2024, 3, []DayCount{{Dia: "2024-03-01", Total: 9}})
	if _, hit := cache.Get(ctx, 2, 2024, 3); hit {
		t.Error("tenant 2 read tenant 1's aggregate")
	}
}

func TestCalendarCache_InvalidateDropsMonth(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()

	cache.Set(ctx, 1, 2024, 3, []DayCount{{Dia: "2024-03-01", Total: 1}})
	cache.Set(ctx, 1, 2024, 4, []DayCount{{Dia: "2024-04-01", Total: 2}})

	cache.Invalidate(ctx, 1, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))

	if _, hit := cache.Get(ctx, 1, 2024, 3); hit {
		t.Error("march aggregate survived invalidation")
	}
	if _, hit := cache.Get(ctx, 1, 2024, 4); !hit {
		t.Error("april aggregate was dropped by march invalidation")
	}
}

func TestCalendarCache_ExpiresWithTTL(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	cache.Set(ctx, 1, 2024, 3, []DayCount{{Dia: "2024-03-01", Total: 1}})
	mr.FastForward(6 * time.Minute)

	if _, hit := cache.Get(ctx, 1, 2024, 3); hit {
		t.Error("aggregate survived past its TTL")
	}
}

func TestCalendarCache_NilClientDegrades(t *testing.T) {
	cache := NewCalendarCache(nil, time.Minute, nil)
	if _, hit := cache.Get(context.Background(), 1, 2024, 3); hit {
		t.Error("nil-client cache reported a hit")
	}
	cache.Set(context.Background(), 1, 2024, 3, nil)
	cache.Invalidate(context.Background(), 1, time.Now())
}
