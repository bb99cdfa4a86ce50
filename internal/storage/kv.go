// Package storage provides the key-value persistence layer used by the clinic
// store. Values are JSON documents addressed by a collection key.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("storage: key not found")

// KV is a byte-oriented key-value store.
//
// PutMany writes every entry or none of them; it is the only way to change
// more than one key as a unit.
type KV interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// PutMany stores all entries atomically.
	PutMany(ctx context.Context, entries map[string][]byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
