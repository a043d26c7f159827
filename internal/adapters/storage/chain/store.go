package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/serverctl/internal/adapters/storage/file"
	passstore "github.com/bnema/serverctl/internal/adapters/storage/pass"
	"github.com/bnema/serverctl/internal/ports"
)

// Store tries primary first and falls back on any error except cancellation.
// A backend that reports itself unavailable is skipped entirely.
type Store struct {
	primary  ports.KeyValueStore
	fallback ports.KeyValueStore
}

var _ ports.KeyValueStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary store is nil")
	errNilFallbackStore = errors.New("fallback store is nil")
)

func NewStore(primary ports.KeyValueStore, fallback ports.KeyValueStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.KeyValueStore, fallback ports.KeyValueStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

func NewPassFirstWithFileFallback(passPrefix, fileRoot string) (*Store, error) {
	return NewStoreChecked(passstore.NewStore(passPrefix), filestore.NewStore(fileRoot))
}

func (s *Store) Available() bool {
	return s.primary.Available() || s.fallback.Available()
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	_, err := withFallback(s, "put", func(store ports.KeyValueStore) (struct{}, error) {
		return struct{}{}, store.Put(ctx, key, value)
	})
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return withFallback(s, "get", func(store ports.KeyValueStore) (string, error) {
		return store.Get(ctx, key)
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := withFallback(s, "delete", func(store ports.KeyValueStore) (struct{}, error) {
		return struct{}{}, store.Delete(ctx, key)
	})
	return err
}

// withFallback runs call against the primary backend and, when that fails for
// any reason other than cancellation, against the fallback. An unavailable
// primary sends the call straight to the fallback.
func withFallback[T any](s *Store, op string, call func(ports.KeyValueStore) (T, error)) (T, error) {
	if !s.primary.Available() {
		return call(s.fallback)
	}

	value, err := call(s.primary)
	if err == nil || shouldSkipFallback(err) || !s.fallback.Available() {
		return value, err
	}

	value, fallbackErr := call(s.fallback)
	if fallbackErr == nil {
		return value, nil
	}

	var zero T
	return zero, fmt.Errorf("primary backend %s failed: %w; fallback backend %s failed: %w", op, err, op, fallbackErr)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
