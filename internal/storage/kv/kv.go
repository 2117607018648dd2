// Package kv provides the key-value backends the record store runs on:
// in-memory for tests and development, LevelDB for persistence. A MySQL
// backend with the same contract lives in internal/storage/mysql.
package kv

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrExists is returned by Insert when the key is occupied.
	ErrExists = errors.New("kv: key already exists")
	// ErrKeyNotFound is returned by Get when the key is absent.
	ErrKeyNotFound = errors.New("kv: key not found")
)

// Store is a minimal keyed byte store. Insert is create-xor-fail; Put
// overwrites. No delete — records are never removed.
type Store interface {
	Insert(ctx context.Context, key, value []byte) error
	Get(ctx context.Context, key []byte) ([]byte, error)
	Put(ctx context.Context, key, value []byte) error
	Close() error
}

// --- In-memory store (tests, dev) ---

type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Insert(ctx context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[string(key)]; ok {
		return ErrExists
	}
	s.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (s *MemStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemStore) Put(ctx context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (s *MemStore) Close() error { return nil }

// Len reports the number of stored records.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
