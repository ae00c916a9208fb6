// Copyright (c) 2025 BVK Chaitanya

package dataset

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bvk/tradinhood/dataset"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Show struct {
	cmdutil.DBFlags

	candles bool
}

func (c *Show) Purpose() string {
	return "Prints a saved dataset"
}

func (c *Show) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("show", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.BoolVar(&c.candles, "candles", false, "when true, prints every candle in the dataset")
	return "show", fset, cli.CmdFunc(c.run)
}

func (c *Show) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one dataset name argument")
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
	fmt.Println(ds)
	if !c.candles {
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Time\tSymbol\tOpen\tHigh\tLow\tClose\tVolume\t\n")
	for _, ts := range ds.Dates() {
		for _, s := range ds.Symbols() {
			v, ok := ds.Get(ts, s)
			if !ok {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n", ts.Format("2006-01-02 15:04"), s, v.Open, v.High, v.Low, v.Close, v.Volume)
		}
	}
	return tw.Flush()
}

type List struct {
	cmdutil.DBFlags
}

func (c *List) Purpose() string {
	return "Prints the names of all saved datasets"
}

func (c *List) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "list", fset, cli.CmdFunc(c.run)
}

func (c *List) run(ctx context.Context, args []string) error {
	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	names, err := dataset.List(ctx, db)
	if err != nil {
		return err
	}
	for _, name := range names {
		ds, err := dataset.Load(ctx, db, name)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", name, ds)
	}
	return nil
}

type Delete struct {
	cmdutil.DBFlags
}

func (c *Delete) Purpose() string {
	return "Deletes saved datasets"
}

func (c *Delete) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("delete", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "delete", fset, cli.CmdFunc(c.run)
}

func (c *Delete) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("this command takes one or more dataset name arguments")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	for _, name := range args {
		if err := dataset.Delete(ctx, db, name); err != nil {
			return err
		}
	}
	return nil
}
