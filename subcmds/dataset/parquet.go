// Copyright (c) 2025 BVK Chaitanya

package dataset

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/bvk/tradinhood/dataset"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Export struct {
	cmdutil.DBFlags
}

func (c *Export) Purpose() string {
	return "Exports a saved dataset into a parquet file"
}

func (c *Export) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("export", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "export", fset, cli.CmdFunc(c.run)
}

func (c *Export) run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("this command takes dataset name and parquet file arguments")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	ds, err := dataset.Load(ctx, db, args[0])
	if err != nil {
		return err
	}
	return dataset.ExportParquet(args[1], ds)
}

type Import struct {
	cmdutil.DBFlags

	merge bool
}

func (c *Import) Purpose() string {
	return "Imports a parquet file as a saved dataset"
}

func (c *Import) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("import", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.BoolVar(&c.merge, "merge", false, "when true, merges into the existing dataset with the same name")
	return "import", fset, cli.CmdFunc(c.run)
}

func (c *Import) run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("this command takes parquet file and dataset name arguments")
	}

	ds, err := dataset.ImportParquet(args[0])
	if err != nil {
		return err
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	name := args[1]
	if old, err := dataset.Load(ctx, db, name); err == nil {
		if !c.merge {
			return fmt.Errorf("dataset %q already exists: %w", name, os.ErrExist)
		}
		if err := old.Merge(ds); err != nil {
			return err
		}
		ds = old
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := dataset.Save(ctx, db, name, ds); err != nil {
		return err
	}
	fmt.Println(ds)
	return nil
}
