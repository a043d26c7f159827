package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/ports"
)

// Store is a process-local KeyValueStore. Values survive only as long as the Store.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ ports.KeyValueStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{values: map[string]string{}}
}

func (s *Store) Available() bool {
	return true
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("memory value %q: %w", key, domain.ErrKeyNotFound)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
