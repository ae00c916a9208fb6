// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/bvk/tradinhood/tradelog"
	"github.com/visvasity/cli"
)

// printSummary prints the first and last step records of a run and the
// return over the run.
func printSummary(log []*gobs.StepRecord) error {
	if len(log) == 0 {
		fmt.Println("no steps were run")
		return nil
	}
	first, last := log[0], log[len(log)-1]
	fmt.Printf("Steps: %d\n", len(log)/2)
	fmt.Printf("Period: %s -> %s\n", first.Time.Time.Format("2006-01-02 15:04"), last.Time.Time.Format("2006-01-02 15:04"))
	fmt.Printf("Initial Value: %s\n", first.PortfolioValue.StringFixed(2))
	fmt.Printf("Final Value: %s\n", last.PortfolioValue.StringFixed(2))
	fmt.Printf("Final Cash: %s\n", last.Cash.StringFixed(2))
	if first.PortfolioValue.IsPositive() {
		pct := last.PortfolioValue.Sub(first.PortfolioValue).Div(first.PortfolioValue).Shift(2)
		fmt.Printf("Return: %s%%\n", pct.StringFixed(2))
	}
	for _, s := range sortedKeys(last.Owned) {
		fmt.Printf("Owned %s: %s\n", s, last.Owned[s])
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

type Steps struct {
	cmdutil.DBFlags

	remove bool
}

func (c *Steps) Purpose() string {
	return "Prints the step records of a run from a trade log file"
}

func (c *Steps) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("steps", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.BoolVar(&c.remove, "delete", false, "when true, deletes the run records instead of printing them")
	return "steps", fset, cli.CmdFunc(c.run)
}

func (c *Steps) run(ctx context.Context, args []string) error {
	if len(args) != 1 && len(args) != 2 {
		return fmt.Errorf("this command takes trade log file and an optional run name arguments")
	}

	fpath, err := c.DBFlags.ResolvePath(args[0])
	if err != nil {
		return err
	}
	store, err := tradelog.Open(ctx, fpath)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		runs, err := store.Runs(ctx)
		if err != nil {
			return err
		}
		for _, run := range runs {
			fmt.Println(run)
		}
		return nil
	}

	run := args[1]
	if c.remove {
		return store.DeleteRun(ctx, run)
	}

	steps, err := store.Steps(ctx, run)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Time\tPhase\tCash\tValue\tOwned\n")
	for _, s := range steps {
		var owned []string
		for _, k := range sortedKeys(s.Owned) {
			owned = append(owned, fmt.Sprintf("%s=%s@%s", k, s.Owned[k], s.Prices[k].StringFixed(2)))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.Time.Time.Local().Format("2006-01-02 15:04:05"), s.Phase,
			s.Cash.StringFixed(2), s.PortfolioValue.StringFixed(2), strings.Join(owned, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return printSummary(steps)
}
