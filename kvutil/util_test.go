// Copyright (c) 2025 BVK Chaitanya

package kvutil

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
)

type testValue struct {
	Name  string
	Count int
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	if _, err := GetDB[testValue](ctx, db, "/a/missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("wanted os.ErrNotExist, got %v", err)
	}

	for i, name := range []string{"x", "y", "z"} {
		if err := SetDB(ctx, db, "/a/"+name, &testValue{Name: name, Count: i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := SetDB(ctx, db, "/b/other", &testValue{Name: "other"}); err != nil {
		t.Fatal(err)
	}

	v, err := GetDB[testValue](ctx, db, "/a/y")
	if err != nil {
		t.Fatal(err)
	}
	if v.Name != "y" || v.Count != 1 {
		t.Fatalf("wanted y/1, got %v", v)
	}

	begin, end := PathRange("/a")
	var names []string
	collect := func(ctx context.Context, key string, v *testValue) error {
		names = append(names, v.Name)
		return nil
	}
	if err := AscendDB(ctx, db, begin, end, collect); err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 || names[0] != "x" || names[2] != "z" {
		t.Fatalf("wanted [x y z], got %v", names)
	}

	if err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return DeleteRange(ctx, rw, begin, end)
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := GetDB[testValue](ctx, db, "/a/x"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("wanted os.ErrNotExist, got %v", err)
	}
	if _, err := GetDB[testValue](ctx, db, "/b/other"); err != nil {
		t.Fatal(err)
	}
}
