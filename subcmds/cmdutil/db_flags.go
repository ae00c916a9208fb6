// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/bvkgo/kv"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
)

type DBFlags struct {
	dataDir string
}

func (f *DBFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.dataDir, "data-dir", "", "path to the data directory (default $HOME/.tradinhood)")
}

// DataDir returns the absolute path to the data directory, creating it if
// necessary.
func (f *DBFlags) DataDir() (string, error) {
	dir := f.dataDir
	if len(dir) == 0 {
		dir = filepath.Join(os.Getenv("HOME"), ".tradinhood")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("could not create data directory %q: %w", dir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("could not determine data-dir %q absolute path: %w", dir, err)
	}
	return abs, nil
}

// GetDatabase opens the badger database in the data directory. Callers must
// call the returned closer when done.
func (f *DBFlags) GetDatabase(ctx context.Context) (db kv.Database, closer func(), status error) {
	dataDir, err := f.DataDir()
	if err != nil {
		return nil, nil, err
	}

	bopts := badger.DefaultOptions(filepath.Join(dataDir, "db"))
	bopts = bopts.WithLogger(nil)
	bdb, err := badger.Open(bopts)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open the database: %w", err)
	}
	closer = func() {
		if err := bdb.Close(); err != nil {
			slog.Warn("could not close the database (ignored)", "err", err)
		}
	}
	return kvbadger.New(bdb, isGoodKey), closer, nil
}

func isGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}

// ResolvePath returns the file path as is when it is absolute, and relative
// to the data directory otherwise.
func (f *DBFlags) ResolvePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return file, nil
	}
	dataDir, err := f.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, file), nil
}
