// Package reactive holds values that notify subscribers when they change.
//
// A Subject owns one value and an ordered listener list. PersistentCell adds
// durable persistence and one-time hydration on top of a Subject, and Derived
// recomputes its value asynchronously from an upstream Subscribable, dropping
// results that were superseded by a newer upstream value before they arrived.
//
// Deliveries for a Subject are serialized through a FIFO queue: a Set issued
// from inside a listener, or from another goroutine while a delivery is in
// progress, is delivered after the current one has reached every listener.
// Listeners are never invoked while internal locks are held.
package reactive
