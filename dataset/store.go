// Copyright (c) 2025 BVK Chaitanya

package dataset

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/kvutil"
	"github.com/bvkgo/kv"
)

const Keyspace = "/datasets"

func datasetKey(name string) (string, error) {
	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("dataset name %q is invalid: %w", name, os.ErrInvalid)
	}
	return path.Join(Keyspace, name), nil
}

// Save stores the dataset in the database under the given name, replacing
// any older dataset with the same name.
func Save(ctx context.Context, db kv.Database, name string, d *Dataset) error {
	key, err := datasetKey(name)
	if err != nil {
		return err
	}
	if err := kvutil.SetDB(ctx, db, key, d.Encode(name)); err != nil {
		return fmt.Errorf("could not save dataset %q: %w", name, err)
	}
	return nil
}

// Load reads a dataset by name. Returns os.ErrNotExist (wrapped) when the
// dataset is not found.
func Load(ctx context.Context, db kv.Database, name string) (*Dataset, error) {
	key, err := datasetKey(name)
	if err != nil {
		return nil, err
	}
	gv, err := kvutil.GetDB[gobs.Dataset](ctx, db, key)
	if err != nil {
		return nil, fmt.Errorf("could not load dataset %q: %w", name, err)
	}
	return Decode(gv)
}

// List returns the names of all saved datasets.
func List(ctx context.Context, db kv.Database) ([]string, error) {
	var names []string
	begin, end := kvutil.PathRange(Keyspace)
	err := kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
		keys, err := kvutil.ListKeys(ctx, r, begin, end)
		if err != nil {
			return err
		}
		for _, k := range keys {
			names = append(names, path.Base(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Delete removes a saved dataset.
func Delete(ctx context.Context, db kv.Database, name string) error {
	key, err := datasetKey(name)
	if err != nil {
		return err
	}
	return kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Delete(ctx, key)
	})
}
