// Package kvstore persists JSON-serializable state under string keys. It is
// the engine's only durable surface: carts, wishlists, the logged-in user
// snapshot and the registered-users list all live here.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value exists for the key.
var ErrKeyNotFound = errors.New("kvstore: key not found")

// Store is a key-value store of JSON-encoded values.
//
// SetMulti writes all given keys as one atomic operation; callers rely on it
// to keep related collections (cart and wishlist) consistent on disk.
type Store interface {
	Get(ctx context.Context, key string, out interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	SetMulti(ctx context.Context, values map[string]interface{}) error
	Delete(ctx context.Context, key string) error
}
