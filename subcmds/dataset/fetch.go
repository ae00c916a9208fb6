// Copyright (c) 2025 BVK Chaitanya

package dataset

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/tradinhood/dataset"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Fetch struct {
	cmdutil.ClientFlags
	cmdutil.DBFlags

	resolution string
	name       string
	merge      bool
	parquet    string
}

func (c *Fetch) Purpose() string {
	return "Fetches historical candles for symbols from the brokerage"
}

func (c *Fetch) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("fetch", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.resolution, "resolution", "1d", "candle resolution (15s|1m|5m|1h|1d|1w)")
	fset.StringVar(&c.name, "name", "", "when non-empty, saves the dataset in the database with this name")
	fset.BoolVar(&c.merge, "merge", false, "when true, merges into the existing dataset with the same name")
	fset.StringVar(&c.parquet, "parquet", "", "when non-empty, also exports the dataset to this parquet file")
	return "fetch", fset, cli.CmdFunc(c.run)
}

func (c *Fetch) run(ctx context.Context, args []string) error {
	symbols := cmdutil.SplitSymbols(joinArgs(args))
	if len(symbols) == 0 {
		return fmt.Errorf("this command takes one or more symbol arguments")
	}
	if _, err := dataset.Duration(c.resolution); err != nil {
		return err
	}

	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	var sources []dataset.Source
	for _, s := range symbols {
		asset, err := client.Lookup(ctx, s)
		if err != nil {
			return fmt.Errorf("could not lookup symbol %q: %w", s, err)
		}
		sources = append(sources, asset)
	}

	ds, err := dataset.FromAssets(ctx, sources, c.resolution)
	if err != nil {
		return err
	}

	if len(c.name) != 0 {
		db, closer, err := c.DBFlags.GetDatabase(ctx)
		if err != nil {
			return err
		}
		defer closer()

		if c.merge {
			old, err := dataset.Load(ctx, db, c.name)
			if err != nil {
				return err
			}
			if err := old.Merge(ds); err != nil {
				return err
			}
			ds = old
		}
		if err := dataset.Save(ctx, db, c.name, ds); err != nil {
			return err
		}
	}

	if len(c.parquet) != 0 {
		if err := dataset.ExportParquet(c.parquet, ds); err != nil {
			return err
		}
	}
	fmt.Println(ds)
	return nil
}
