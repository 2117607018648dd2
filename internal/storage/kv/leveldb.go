package kv

import (
	"context"
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDB is the persistent backend. The mutex makes Insert's
// existence-check-then-write atomic; LevelDB itself only guarantees
// single-operation atomicity.
type LevelDB struct {
	mu sync.Mutex
	db *leveldb.DB
}

// OpenLevelDB creates or opens a LevelDB database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Insert(ctx context.Context, key, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ok, err := l.db.Has(key, nil)
	if err != nil {
		return err
	}
	if ok {
		return ErrExists
	}
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Get(ctx context.Context, key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (l *LevelDB) Put(ctx context.Context, key, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Close() error { return l.db.Close() }
