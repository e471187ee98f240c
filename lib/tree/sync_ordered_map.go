package tree

import (
	"sync"

	"github.com/benz9527/xrank/lib/infra"
)

// SyncOrderedMap serializes all the mutations of an OrderedMap by
// one RWMutex. Readers share the read lock.
// The value references are never leaked out of the lock, all the
// methods return copies.
type SyncOrderedMap[K infra.OrderedKey, V any] struct {
	lock sync.RWMutex
	m    OrderedMap[K, V]
}

func (s *SyncOrderedMap[K, V]) Len() int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.m.Len()
}

// Insert returns ErrKeyExists if the key is present.
func (s *SyncOrderedMap[K, V]) Insert(key K, val V) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.m.Insert(key, val) {
		return ErrKeyExists
	}
	return nil
}

// Upsert replaces the value of an existing key or inserts it.
func (s *SyncOrderedMap[K, V]) Upsert(key K, val V) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if ref := s.m.Search(key); ref != nil {
		*ref = val
		return
	}
	s.m.Insert(key, val)
}

// Update applies fn to the value of key under the write lock.
// fn receives the zero value and false if the key is absent, the
// returned value is stored either way.
func (s *SyncOrderedMap[K, V]) Update(key K, fn func(old V, exists bool) V) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if ref := s.m.Search(key); ref != nil {
		*ref = fn(*ref, true)
		return
	}
	var zero V
	s.m.Insert(key, fn(zero, false))
}

// Pop returns the removed value, or ErrKeyNotFound.
func (s *SyncOrderedMap[K, V]) Pop(key K) (val V, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	ref := s.m.Search(key)
	if ref == nil {
		return val, ErrKeyNotFound
	}
	val = *ref
	s.m.Pop(key)
	return val, nil
}

func (s *SyncOrderedMap[K, V]) Get(key K) (V, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.m.Get(key)
}

func (s *SyncOrderedMap[K, V]) Contains(key K) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.m.Contains(key)
}

func (s *SyncOrderedMap[K, V]) Select(k int64) (key K, val V, ok bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if key, ok = s.m.SelectKey(k); ok {
		val = *s.m.Select(k)
	}
	return
}

func (s *SyncOrderedMap[K, V]) ISelect(k int64) (key K, val V, ok bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if key, ok = s.m.ISelectKey(k); ok {
		val = *s.m.ISelect(k)
	}
	return
}

func (s *SyncOrderedMap[K, V]) Rank(key K) int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.m.Rank(key)
}

func (s *SyncOrderedMap[K, V]) IRank(key K) int64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.m.IRank(key)
}

// Keys returns all keys in map order.
func (s *SyncOrderedMap[K, V]) Keys() []K {
	s.lock.RLock()
	defer s.lock.RUnlock()
	keys := make([]K, 0, s.m.Len())
	for key := range s.m.InOrder() {
		keys = append(keys, key)
	}
	return keys
}

// Snapshot deep copies the inner map under the read lock.
func (s *SyncOrderedMap[K, V]) Snapshot() OrderedMap[K, V] {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.m.Clone()
}

func (s *SyncOrderedMap[K, V]) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.m.Clear()
}

func NewSyncOrderedMap[K infra.OrderedKey, V any](opts ...OrderedMapOption[K, V]) *SyncOrderedMap[K, V] {
	return &SyncOrderedMap[K, V]{
		m: NewOrderedMap[K, V](opts...),
	}
}
