// Package ledger implements the record store: fixed-layout records addressed
// by keys derived from a namespace tag and two identities, on top of a plain
// key-value backend. The host ledger this stands in for serializes all
// mutations to one record; the Store replicates that with a single mutex
// held across each whole read-modify-write.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"restaurant_booking/internal/domain"
	"restaurant_booking/internal/storage/kv"
)

type Store struct {
	mu sync.Mutex
	kv kv.Store
}

var _ domain.Ledger = (*Store)(nil)

func New(backend kv.Store) *Store { return &Store{kv: backend} }

// create maps the backend's occupied-key failure to the domain conflict.
// Overwriting an existing record on create is never acceptable.
func (s *Store) create(ctx context.Context, key domain.Key, value []byte) error {
	if err := s.kv.Insert(ctx, key[:], value); err != nil {
		if errors.Is(err, kv.ErrExists) {
			return domain.ErrAlreadyInitialized
		}
		return fmt.Errorf("create %s: %w", key, err)
	}
	return nil
}

func (s *Store) read(ctx context.Context, key domain.Key) ([]byte, error) {
	b, err := s.kv.Get(ctx, key[:])
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return b, nil
}

func (s *Store) CreateUserStats(ctx context.Context, rec domain.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, UserStatsKey(rec.User, rec.Restaurant), encodeUserStats(rec))
}

func (s *Store) GetUserStats(ctx context.Context, user, restaurant domain.ID) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.read(ctx, UserStatsKey(user, restaurant))
	if err != nil {
		return domain.UserStats{}, err
	}
	return decodeUserStats(b)
}

// UpdateUserStats applies fn to the stored record and writes the result
// back while still holding the lock, so no concurrent mutation can slip in
// between the read and the write.
func (s *Store) UpdateUserStats(ctx context.Context, user, restaurant domain.ID, fn func(*domain.UserStats) error) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := UserStatsKey(user, restaurant)
	b, err := s.read(ctx, key)
	if err != nil {
		return domain.UserStats{}, err
	}
	rec, err := decodeUserStats(b)
	if err != nil {
		return domain.UserStats{}, err
	}
	if err := fn(&rec); err != nil {
		return domain.UserStats{}, err
	}
	if err := s.kv.Put(ctx, key[:], encodeUserStats(rec)); err != nil {
		return domain.UserStats{}, fmt.Errorf("write %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) CreateDishStats(ctx context.Context, rec domain.DishStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(ctx, DishStatsKey(rec.User, rec.Dish), encodeDishStats(rec))
}

func (s *Store) GetDishStats(ctx context.Context, user, dish domain.ID) (domain.DishStats, error) {
	return s.GetDishStatsAt(ctx, DishStatsKey(user, dish))
}

func (s *Store) GetDishStatsAt(ctx context.Context, key domain.Key) (domain.DishStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.read(ctx, key)
	if err != nil {
		return domain.DishStats{}, err
	}
	return decodeDishStats(b)
}

// UpdateDishStatsAt is UpdateUserStats for raw-key addressing: fn runs and
// the result lands under one lock hold.
func (s *Store) UpdateDishStatsAt(ctx context.Context, key domain.Key, fn func(*domain.DishStats) error) (domain.DishStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.read(ctx, key)
	if err != nil {
		return domain.DishStats{}, err
	}
	rec, err := decodeDishStats(b)
	if err != nil {
		return domain.DishStats{}, err
	}
	if err := fn(&rec); err != nil {
		return domain.DishStats{}, err
	}
	if err := s.kv.Put(ctx, key[:], encodeDishStats(rec)); err != nil {
		return domain.DishStats{}, fmt.Errorf("write %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) GetReview(ctx context.Context, user, restaurant domain.ID) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.read(ctx, ReviewKey(user, restaurant))
	if err != nil {
		return domain.Review{}, err
	}
	return decodeReview(b)
}

// UpdateReview is the one create-if-absent path in the store: an unoccupied
// key gets the zero record (identities set) before fn runs. Because the
// read, fn, and write all happen under the same lock hold, two concurrent
// callers cannot both see an unwritten review.
func (s *Store) UpdateReview(ctx context.Context, user, restaurant domain.ID, fn func(*domain.Review) error) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ReviewKey(user, restaurant)
	rec := domain.Review{User: user, Restaurant: restaurant}
	b, err := s.read(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// the zero record persists even if fn rejects
		if cerr := s.create(ctx, key, encodeReview(rec)); cerr != nil {
			return domain.Review{}, cerr
		}
	case err != nil:
		return domain.Review{}, err
	default:
		if rec, err = decodeReview(b); err != nil {
			return domain.Review{}, err
		}
	}
	if err := fn(&rec); err != nil {
		return domain.Review{}, err
	}
	if err := s.kv.Put(ctx, key[:], encodeReview(rec)); err != nil {
		return domain.Review{}, fmt.Errorf("write %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) DishStatsKey(user, dish domain.ID) domain.Key {
	return DishStatsKey(user, dish)
}
