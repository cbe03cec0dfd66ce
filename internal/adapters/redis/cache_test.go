package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "emoji_map/internal/adapters/redis"
	"emoji_map/internal/domain"
)

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	views := []domain.PlaceView{{PlaceID: 1, PlaceName: "Cake House", Emoji: "🍰", TotalReviews: 3}}
	if err := c.Set(ctx, "places:aggregate", views, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got []domain.PlaceView
	ok, err := c.Get(ctx, "places:aggregate", &got)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].PlaceName != "Cake House" || got[0].Emoji != "🍰" {
		t.Fatalf("unexpected value: %+v", got)
	}

	if err := c.Del(ctx, "places:aggregate"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, err = c.Get(ctx, "places:aggregate", &got)
	if err != nil || ok {
		t.Fatalf("expected miss after delete, ok=%v err=%v", ok, err)
	}
}

func TestCacheMissIsNotError(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)

	var dst []domain.PlaceView
	ok, err := c.Get(context.Background(), "absent", &dst)
	if err != nil {
		t.Fatalf("miss should not error: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}
}
