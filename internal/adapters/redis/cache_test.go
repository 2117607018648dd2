package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "restaurant_booking/internal/adapters/redis"
	"restaurant_booking/internal/domain"
)

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	want := domain.UserStatsView{User: "aa", Restaurant: "bb", VisitCount: 3}
	if err := c.Set(ctx, "user-stats:aa:bb", want, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got domain.UserStatsView
	ok, err := c.Get(ctx, "user-stats:aa:bb", &got)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}

	if err := c.Del(ctx, "user-stats:aa:bb"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, err = c.Get(ctx, "user-stats:aa:bb", &got)
	if err != nil {
		t.Fatalf("get after del: %v", err)
	}
	if ok {
		t.Fatalf("expected miss after del")
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)

	var got domain.ReviewView
	ok, err := c.Get(context.Background(), "review:none", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}
}
