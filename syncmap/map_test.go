// Copyright (c) 2025 BVK Chaitanya

package syncmap

import "testing"

func TestMap(t *testing.T) {
	var m Map[string, *int]

	one, two := 1, 2
	if v, loaded := m.LoadOrStore("a", &one); loaded || v != &one {
		t.Fatalf("wanted a new entry")
	}
	if v, loaded := m.LoadOrStore("a", &two); !loaded || v != &one {
		t.Fatalf("wanted the existing entry")
	}
	m.Store("b", &two)
	if n := m.Len(); n != 2 {
		t.Fatalf("wanted 2, got %d", n)
	}
	if v, ok := m.Load("b"); !ok || *v != 2 {
		t.Fatalf("wanted 2, got %v", v)
	}
	m.Delete("b")
	if _, ok := m.Load("b"); ok {
		t.Fatalf("wanted b to be deleted")
	}
	if vs := m.Values(); len(vs) != 1 || *vs[0] != 1 {
		t.Fatalf("wanted [1], got %v", vs)
	}
}
