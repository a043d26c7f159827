package ports

import "context"

// KeyValueStore is the durable string store backing persisted state.
// Get reports domain.ErrKeyNotFound for missing keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	// Available reports whether durable storage exists in this execution context.
	Available() bool
}
