package reactive

import (
	"log/slog"
	"time"
)

const defaultStorageTimeout = 5 * time.Second

type config struct {
	logger         *slog.Logger
	storageTimeout time.Duration
	fetchTimeout   time.Duration
}

type Option func(*config)

// WithLogger routes diagnostics to logger. Without it nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStorageTimeout bounds each durable store call made by a PersistentCell.
func WithStorageTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.storageTimeout = timeout
	}
}

// WithFetchTimeout bounds each resolve call made by a Derived. Zero means no bound.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.fetchTimeout = timeout
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		logger:         slog.New(slog.DiscardHandler),
		storageTimeout: defaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
