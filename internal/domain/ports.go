package domain

import "context"

// Ledger is the record store: fixed-layout records at derived keys, backed
// by whatever the host provides. Create fails on an occupied key, Get fails
// on an absent one; there is no delete. Every Update runs its closure and
// persists the result as one serialized step, so a record can never be read
// stale and written back over a concurrent mutation.
type Ledger interface {
	// UserStats: strict create-once, then mutate-in-place via Update.
	CreateUserStats(ctx context.Context, rec UserStats) error
	GetUserStats(ctx context.Context, user, restaurant ID) (UserStats, error)
	// UpdateUserStats loads the record, applies fn, and persists the result
	// atomically. ErrNotFound when the record was never created; an error
	// from fn aborts the write and leaves the record untouched.
	UpdateUserStats(ctx context.Context, user, restaurant ID, fn func(*UserStats) error) (UserStats, error)

	// DishStats: strict create-once. BookTable addresses these by raw key
	// (the caller supplies record references, not identities).
	CreateDishStats(ctx context.Context, rec DishStats) error
	GetDishStats(ctx context.Context, user, dish ID) (DishStats, error)
	UpdateDishStatsAt(ctx context.Context, key Key, fn func(*DishStats) error) (DishStats, error)

	// Review: create-if-absent inside Update, so the write-once check and
	// the write itself cannot interleave with another caller's.
	GetReview(ctx context.Context, user, restaurant ID) (Review, error)
	// UpdateReview creates the zero record if the key is unoccupied, then
	// applies fn and persists atomically. An error from fn aborts the write
	// but the freshly created zero record, if any, stays.
	UpdateReview(ctx context.Context, user, restaurant ID, fn func(*Review) error) (Review, error)

	// DishStatsKey exposes the derived address so callers can build the
	// references BookTable consumes.
	DishStatsKey(user, dish ID) Key
}

// Cache fronts the query side. Mutations invalidate, reads fill.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
