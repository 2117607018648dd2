package domain

import (
	"encoding/hex"
	"fmt"
)

// IDSize is the width of every identity and derived key, matching the
// host ledger's 32-byte public keys.
const IDSize = 32

// ID is an opaque identity supplied by the host (user, restaurant, dish).
// It carries no fields of its own; it is only key material.
type ID [IDSize]byte

// Key is a derived record address. Same width as an ID but computed, not
// assigned, so the two are kept as distinct types.
type Key [IDSize]byte

func (id ID) String() string { return hex.EncodeToString(id[:]) }
func (k Key) String() string { return hex.EncodeToString(k[:]) }
func (id ID) IsZero() bool   { return id == ID{} }
func (k Key) IsZero() bool   { return k == Key{} }

// ParseID decodes a 64-char hex identity.
func ParseID(s string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, fmt.Errorf("parse id: %w", err)
	}
	if len(b) != IDSize {
		return ID{}, fmt.Errorf("parse id: want %d bytes, got %d", IDSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ParseKey decodes a 64-char hex record address.
func ParseKey(s string) (Key, error) {
	var k Key
	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("parse key: %w", err)
	}
	if len(b) != IDSize {
		return Key{}, fmt.Errorf("parse key: want %d bytes, got %d", IDSize, len(b))
	}
	copy(k[:], b)
	return k, nil
}
