// Copyright (c) 2023 BVK Chaitanya

package kvutil

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bvkgo/kv"
)

// ListKeys returns all keys in the [begin, end) range.
func ListKeys(ctx context.Context, r kv.Reader, begin, end string) ([]string, error) {
	it, err := r.Ascend(ctx, begin, end)
	if err != nil {
		return nil, fmt.Errorf("could not create ascending iterator: %w", err)
	}
	defer kv.Close(it)

	var keys []string
	for k, _, err := it.Fetch(ctx, false); err == nil; k, _, err = it.Fetch(ctx, true) {
		keys = append(keys, k)
	}
	if _, _, err := it.Fetch(ctx, false); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterator fetch has failed: %w", err)
	}
	return keys, nil
}

// DeleteRange removes all keys in the [begin, end) range.
func DeleteRange(ctx context.Context, rw kv.ReadWriter, begin, end string) error {
	keys, err := ListKeys(ctx, rw, begin, end)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := rw.Delete(ctx, k); err != nil {
			return fmt.Errorf("could not delete key %q: %w", k, err)
		}
	}
	return nil
}
