package reactive

import "sync"

type Listener[T any] func(T)

// Subscribable is the read side shared by every reactive value.
type Subscribable[T any] interface {
	Value() T
	Subscribe(listener Listener[T]) (unsubscribe func())
}

type subscription[T any] struct {
	id       uint64
	listener Listener[T]
}

type delivery[T any] struct {
	value T
	// target limits the delivery to one subscription; zero means everyone.
	target uint64
}

type Subject[T any] struct {
	mu        sync.Mutex
	value     T
	listeners []subscription[T]
	nextID    uint64
	queue     []delivery[T]
	draining  bool
}

var _ Subscribable[int] = (*Subject[int])(nil)

func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set installs value and delivers it to every subscriber in subscription order.
func (s *Subject[T]) Set(value T) {
	if s.enqueueSet(value) {
		s.drain()
	}
}

// Update replaces the value with fn(current) atomically with respect to other
// Set and Update calls, then delivers it like Set. fn must not call back into s.
func (s *Subject[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)
	s.queue = append(s.queue, delivery[T]{value: s.value})
	mustDrain := s.claimDrain()
	s.mu.Unlock()

	if mustDrain {
		s.drain()
	}
}

// Subscribe registers listener and replays the current value to it.
func (s *Subject[T]) Subscribe(listener Listener[T]) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription[T]{id: id, listener: listener})
	s.queue = append(s.queue, delivery[T]{value: s.value, target: id})
	mustDrain := s.claimDrain()
	s.mu.Unlock()

	if mustDrain {
		s.drain()
	}

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Subject[T]) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// enqueueSet swaps the value and queues its broadcast. The caller must call
// drain when it returns true; callers in this package use the split to make
// the swap atomic with their own bookkeeping.
func (s *Subject[T]) enqueueSet(value T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
	s.queue = append(s.queue, delivery[T]{value: value})
	return s.claimDrain()
}

func (s *Subject[T]) claimDrain() bool {
	if s.draining {
		return false
	}
	s.draining = true
	return true
}

func (s *Subject[T]) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue[0] = delivery[T]{}
		s.queue = s.queue[1:]
		targets := make([]subscription[T], len(s.listeners))
		copy(targets, s.listeners)
		s.mu.Unlock()

		for _, sub := range targets {
			if next.target != 0 && sub.id != next.target {
				continue
			}
			if !s.subscribed(sub.id) {
				continue
			}
			sub.listener(next.value)
		}
	}
}

func (s *Subject[T]) subscribed(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.listeners {
		if sub.id == id {
			return true
		}
	}
	return false
}

func (s *Subject[T]) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}
