// Package cache keeps client side copies of week records and reconciles
// optimistic writes with the store's answers.
package cache

import "sync"

// Optimistic is a keyed cache supporting snapshot, apply and
// commit-or-revert. Every write bumps the key's version; a Mutation only
// resolves when no newer write landed on its key, so the latest completed
// write always wins.
type Optimistic[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]slot[V]
	clone   func(V) V
}

type slot[V any] struct {
	value   V
	present bool
	version uint64
}

// NewOptimistic builds an empty cache. clone, when non-nil, copies values on
// the way in and out so callers never share them.
func NewOptimistic[K comparable, V any](clone func(V) V) *Optimistic[K, V] {
	return &Optimistic[K, V]{
		entries: make(map[K]slot[V]),
		clone:   clone,
	}
}

func (o *Optimistic[K, V]) copy(v V) V {
	if o.clone == nil {
		return v
	}
	return o.clone(v)
}

// Get returns the cached value and whether one is present.
func (o *Optimistic[K, V]) Get(key K) (V, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.entries[key]
	if !ok || !s.present {
		var zero V
		return zero, false
	}
	return o.copy(s.value), true
}

// Version returns the write counter of key.
func (o *Optimistic[K, V]) Version(key K) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.entries[key].version
}

// Set stores authoritative data for key.
func (o *Optimistic[K, V]) Set(key K, v V) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writeLocked(key, o.copy(v), true)
}

// Delete records that key has no value.
func (o *Optimistic[K, V]) Delete(key K) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var zero V
	o.writeLocked(key, zero, false)
}

func (o *Optimistic[K, V]) writeLocked(key K, v V, present bool) uint64 {
	s := o.entries[key]
	s.value = v
	s.present = present
	s.version++
	o.entries[key] = s
	return s.version
}

// Apply snapshots key, replaces it with fn(current, present) and returns the
// handle used to resolve the write.
func (o *Optimistic[K, V]) Apply(key K, fn func(current V, present bool) V) *Mutation[K, V] {
	o.mu.Lock()
	defer o.mu.Unlock()
	prev := o.entries[key]
	next := fn(o.copy(prev.value), prev.present)
	version := o.writeLocked(key, o.copy(next), true)
	return &Mutation[K, V]{
		cache:       o,
		key:         key,
		prev:        prev.value,
		prevPresent: prev.present,
		version:     version,
	}
}

// Mutation is one optimistic write awaiting confirmation.
type Mutation[K comparable, V any] struct {
	cache       *Optimistic[K, V]
	key         K
	prev        V
	prevPresent bool
	version     uint64
	done        bool
}

// Key returns the key the mutation was applied to.
func (m *Mutation[K, V]) Key() K { return m.key }

// Snapshot returns the value captured before the mutation.
func (m *Mutation[K, V]) Snapshot() (V, bool) {
	return m.cache.copy(m.prev), m.prevPresent
}

// Commit replaces the optimistic value with confirmed data. It reports false
// when a newer write already superseded the mutation.
func (m *Mutation[K, V]) Commit(v V) bool {
	return m.resolve(v, true)
}

// Revert restores the snapshot. It reports false when a newer write already
// superseded the mutation, in which case that write is kept.
func (m *Mutation[K, V]) Revert() bool {
	return m.resolve(m.prev, m.prevPresent)
}

func (m *Mutation[K, V]) resolve(v V, present bool) bool {
	o := m.cache
	o.mu.Lock()
	defer o.mu.Unlock()
	if m.done {
		return false
	}
	m.done = true
	if o.entries[m.key].version != m.version {
		return false
	}
	o.writeLocked(m.key, o.copy(v), present)
	return true
}
