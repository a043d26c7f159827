package reactive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/ports"
)

// Validator rejects decoded values that are structurally valid JSON but
// unusable. A rejected value is treated like a malformed one.
type Validator[T any] func(T) error

// PersistentCell is a Subject[*T] mirrored to one key of a KeyValueStore.
// nil is the initial value and is persisted as JSON null.
type PersistentCell[T any] struct {
	subject  *Subject[*T]
	store    ports.KeyValueStore
	key      string
	validate Validator[T]
	cfg      config

	// writeMu keeps the order of persisted writes equal to the order of
	// published values. writes counts Set calls and is guarded by writeMu.
	writeMu   sync.Mutex
	writes    uint64
	hydrate   sync.Once
	hydrated  bool
	hydrateMu sync.Mutex
}

var _ Subscribable[*int] = (*PersistentCell[int])(nil)

func NewPersistentCell[T any](store ports.KeyValueStore, key string, validate Validator[T], opts ...Option) *PersistentCell[T] {
	cfg := newConfig(opts)
	return &PersistentCell[T]{
		subject:  NewSubject[*T](nil),
		store:    store,
		key:      key,
		validate: validate,
		cfg:      cfg,
	}
}

func (c *PersistentCell[T]) Value() *T {
	return c.subject.Value()
}

// Set installs value, persists it, and notifies subscribers. Persistence
// failures are logged and otherwise ignored.
func (c *PersistentCell[T]) Set(value *T) {
	c.writeMu.Lock()
	c.writes++
	c.persist(value)
	mustDrain := c.subject.enqueueSet(value)
	c.writeMu.Unlock()

	if mustDrain {
		c.subject.drain()
	}
}

// install publishes a hydrated value unless a Set ran after the load started.
func (c *PersistentCell[T]) install(value *T, writesAtLoad uint64) {
	c.writeMu.Lock()
	if c.writes != writesAtLoad {
		c.writeMu.Unlock()
		c.cfg.logger.Debug("dropping hydrated value superseded by a newer write", slog.String("key", c.key))
		return
	}
	c.persist(value)
	mustDrain := c.subject.enqueueSet(value)
	c.writeMu.Unlock()

	if mustDrain {
		c.subject.drain()
	}
}

// Subscribe replays the current value to listener. The first call also
// hydrates the cell from the store, before the replay.
func (c *PersistentCell[T]) Subscribe(listener Listener[*T]) func() {
	c.hydrate.Do(c.hydrateFromStore)
	return c.subject.Subscribe(listener)
}

// Hydrated reports whether a hydration attempt has run, successful or not.
func (c *PersistentCell[T]) Hydrated() bool {
	c.hydrateMu.Lock()
	defer c.hydrateMu.Unlock()
	return c.hydrated
}

func (c *PersistentCell[T]) hydrateFromStore() {
	c.hydrateMu.Lock()
	c.hydrated = true
	c.hydrateMu.Unlock()

	if c.store == nil || !c.store.Available() {
		c.cfg.logger.Debug("durable storage unavailable, skipping hydration", slog.String("key", c.key))
		return
	}

	c.writeMu.Lock()
	writesAtLoad := c.writes
	c.writeMu.Unlock()

	value, err := c.load()
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrKeyNotFound):
			c.cfg.logger.Debug("no persisted value", slog.String("key", c.key))
		case errors.Is(err, domain.ErrMalformedValue):
			c.cfg.logger.Warn("ignoring malformed persisted value", slog.String("key", c.key), slog.Any("error", err))
		default:
			c.cfg.logger.Warn("read persisted value", slog.String("key", c.key), slog.Any("error", err))
		}
		return
	}
	if value == nil {
		return
	}

	c.install(value, writesAtLoad)
}

func (c *PersistentCell[T]) load() (*T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.storageTimeout)
	defer cancel()

	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}

	return decode(raw, c.validate)
}

func (c *PersistentCell[T]) persist(value *T) {
	if c.store == nil || !c.store.Available() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.cfg.logger.Warn("encode value for persistence", slog.String("key", c.key), slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.storageTimeout)
	defer cancel()

	if err := c.store.Put(ctx, c.key, string(data)); err != nil {
		c.cfg.logger.Warn("persist value", slog.String("key", c.key), slog.Any("error", err))
	}
}

func decode[T any](raw string, validate Validator[T]) (*T, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var value T
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedValue, err)
	}
	if validate != nil {
		if err := validate(value); err != nil {
			if errors.Is(err, domain.ErrMalformedValue) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedValue, err)
		}
	}

	return &value, nil
}
