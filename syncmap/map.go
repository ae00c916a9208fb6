// Copyright (c) 2023 BVK Chaitanya

// Package syncmap implements a type-safe wrapper over sync.Map.
package syncmap

import "sync"

type Map[K comparable, V any] struct {
	v sync.Map
}

func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	v, ok := m.v.Load(key)
	if !ok {
		return value, false
	}
	return v.(V), true
}

func (m *Map[K, V]) Store(key K, value V) {
	m.v.Store(key, value)
}

// LoadOrStore returns the existing value for the key if present. Otherwise, it
// stores and returns the given value.
func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	a, loaded := m.v.LoadOrStore(key, value)
	return a.(V), loaded
}

func (m *Map[K, V]) Delete(key K) {
	m.v.Delete(key)
}

func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	m.v.Range(func(key, value any) bool {
		return f(key.(K), value.(V))
	})
}

// Len counts the number of entries. It is O(n).
func (m *Map[K, V]) Len() (n int) {
	m.v.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// Values returns all values in unspecified order.
func (m *Map[K, V]) Values() []V {
	var vs []V
	m.Range(func(_ K, v V) bool {
		vs = append(vs, v)
		return true
	})
	return vs
}
