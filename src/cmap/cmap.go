// Package cmap contains a thread-safe sharded map.
// It backs the interpreter's lookup tables: the process-wide symbol table, which
// several interpreters may hit at once, plus S3 method registrations and the
// regex cache. All are read far more often than they are written.
package cmap

import (
	"fmt"
	"sync"
)

// DefaultShardCount is a reasonable default shard count for large maps.
const DefaultShardCount = 1 << 8

// SmallShardCount is a shard count useful for relatively small maps.
const SmallShardCount = 4

// A Map is the top-level map type. All functions on it are threadsafe.
// It should be constructed via New() rather than creating an instance directly.
type Map[K comparable, V any] struct {
	shards []shard[K, V]
	hasher func(K) uint64
	mask   uint64
}

// New creates a new Map using the given hasher to hash items in it.
// The shard count must be a power of 2; it will panic if not.
// Higher shard counts will improve concurrency but consume more memory.
func New[K comparable, V any](shardCount uint64, hasher func(K) uint64) *Map[K, V] {
	mask := shardCount - 1
	if (shardCount & mask) != 0 {
		panic(fmt.Sprintf("Shard count %d is not a power of 2", shardCount))
	}
	m := &Map[K, V]{
		shards: make([]shard[K, V], shardCount),
		mask:   mask,
		hasher: hasher,
	}
	for i := range m.shards {
		m.shards[i].m = map[K]V{}
	}
	return m
}

func (m *Map[K, V]) shard(key K) *shard[K, V] {
	return &m.shards[m.hasher(key)&m.mask]
}

// Set is the equivalent of `map[key] = val`.
func (m *Map[K, V]) Set(key K, val V) {
	m.shard(key).Set(key, val)
}

// Get returns the value for a key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	return m.shard(key).Get(key)
}

// GetOrSet returns the existing value for the key or, if there isn't one, stores
// and returns the result of calling f. f is called with the shard locked so must not
// call back into the map.
func (m *Map[K, V]) GetOrSet(key K, f func() V) V {
	return m.shard(key).GetOrSet(key, f)
}

// Keys returns a slice of all the current keys in the map, in no particular order.
func (m *Map[K, V]) Keys() []K {
	ret := []K{}
	for i := range m.shards {
		ret = append(ret, m.shards[i].Keys()...)
	}
	return ret
}

// A shard is one of the individual shards of a map.
type shard[K comparable, V any] struct {
	m map[K]V
	l sync.RWMutex
}

func (s *shard[K, V]) Set(key K, val V) {
	s.l.Lock()
	defer s.l.Unlock()
	s.m[key] = val
}

func (s *shard[K, V]) Get(key K) (V, bool) {
	s.l.RLock()
	defer s.l.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *shard[K, V]) GetOrSet(key K, f func() V) V {
	if v, ok := s.Get(key); ok {
		return v
	}
	s.l.Lock()
	defer s.l.Unlock()
	if v, ok := s.m[key]; ok {
		return v // Someone else got in first.
	}
	v := f()
	s.m[key] = v
	return v
}

func (s *shard[K, V]) Keys() []K {
	s.l.RLock()
	defer s.l.RUnlock()
	ret := make([]K, 0, len(s.m))
	for k := range s.m {
		ret = append(ret, k)
	}
	return ret
}
