package reactive

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Resolver computes a Derived value from a present upstream value.
type Resolver[S, T any] func(ctx context.Context, upstream S) (T, error)

// Derived mirrors an upstream value through an asynchronous Resolver.
//
// Every upstream change bumps a sequence number. An absent upstream value
// resets the Derived to the zero value of T at once; a present one starts a
// resolve tagged with the new sequence. A resolve may only publish while its
// sequence is still the latest, so a slow answer for an old upstream value
// never overwrites a newer state. A failed resolve publishes the zero value.
type Derived[S, T any] struct {
	subject  *Subject[T]
	upstream Subscribable[S]
	absent   func(S) bool
	resolve  Resolver[S, T]
	cfg      config

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	seq     uint64
	lastErr error
	pending int
	settled chan struct{}
	closed  bool

	unsubscribe func()
}

var _ Subscribable[int] = (*Derived[string, int])(nil)

// NewDerived subscribes to upstream immediately, so the replayed upstream
// value is handled before NewDerived returns.
func NewDerived[S, T any](upstream Subscribable[S], absent func(S) bool, resolve Resolver[S, T], opts ...Option) *Derived[S, T] {
	ctx, cancel := context.WithCancel(context.Background())
	settled := make(chan struct{})
	close(settled)

	var zero T
	d := &Derived[S, T]{
		subject:  NewSubject(zero),
		upstream: upstream,
		absent:   absent,
		resolve:  resolve,
		cfg:      newConfig(opts),
		ctx:      ctx,
		cancel:   cancel,
		settled:  settled,
	}
	d.unsubscribe = upstream.Subscribe(d.onUpstream)

	return d
}

func (d *Derived[S, T]) Value() T {
	return d.subject.Value()
}

func (d *Derived[S, T]) Subscribe(listener Listener[T]) func() {
	return d.subject.Subscribe(listener)
}

// Err returns the error of the last resolve that was allowed to publish, or
// nil when the current value came from a success or an absent upstream.
func (d *Derived[S, T]) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Refresh re-derives from the current upstream value.
func (d *Derived[S, T]) Refresh() {
	d.onUpstream(d.upstream.Value())
}

// Wait blocks until no resolve is outstanding or ctx is done.
func (d *Derived[S, T]) Wait(ctx context.Context) error {
	for {
		d.mu.Lock()
		if d.pending == 0 {
			d.mu.Unlock()
			return nil
		}
		settled := d.settled
		d.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close detaches from upstream and cancels outstanding resolves. Their
// results are discarded.
func (d *Derived[S, T]) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.seq++
	d.mu.Unlock()

	d.unsubscribe()
	d.cancel()
}

func (d *Derived[S, T]) onUpstream(value S) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.seq++
	seq := d.seq

	if d.absent(value) {
		var zero T
		d.lastErr = nil
		mustDrain := d.subject.enqueueSet(zero)
		d.mu.Unlock()
		if mustDrain {
			d.subject.drain()
		}
		return
	}

	if d.pending == 0 {
		d.settled = make(chan struct{})
	}
	d.pending++
	d.mu.Unlock()

	go d.run(seq, value)
}

func (d *Derived[S, T]) run(seq uint64, value S) {
	defer d.finish()

	ctx := d.ctx
	if d.cfg.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.fetchTimeout)
		defer cancel()
	}

	result, err := d.resolve(ctx, value)

	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		d.cfg.logger.Debug("discarding stale result", slog.Uint64("seq", seq), slog.Any("error", err))
		return
	}

	if err != nil {
		var zero T
		result = zero
		if !errors.Is(err, context.Canceled) {
			d.cfg.logger.Warn("derive value", slog.Uint64("seq", seq), slog.Any("error", err))
		}
	}
	d.lastErr = err
	mustDrain := d.subject.enqueueSet(result)
	d.mu.Unlock()

	if mustDrain {
		d.subject.drain()
	}
}

func (d *Derived[S, T]) finish() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending--
	if d.pending == 0 {
		close(d.settled)
	}
}
