// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bvk/tradinhood/pnl"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/bvk/tradinhood/timerange"
	"github.com/visvasity/cli"
)

type PnL struct {
	cmdutil.ClientFlags

	pages  int
	asJSON bool

	period    string
	beginTime string
	endTime   string
}

func (c *PnL) Purpose() string {
	return "Prints the realized profit or loss of closed trades"
}

func (c *PnL) Description() string {
	return `

Command "pnl" pairs every filled sell order with an earlier filled buy order of
the same asset and the same filled quantity and prints the profit or loss of
each pair. Orders without a matching pair are not reported.

`
}

func (c *PnL) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("pnl", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.IntVar(&c.pages, "pages", -1, "number of order history pages to scan (negative for all)")
	fset.BoolVar(&c.asJSON, "json", false, "when true, prints the trades in json format")
	fset.StringVar(&c.period, "period", "lifetime", "reports trades closed in this period (today|yesterday|this-week|last-week|this-month|last-month|this-year|last-year|lifetime)")
	fset.StringVar(&c.beginTime, "begin-time", "", "when non-empty, reports trades closed at or after this date")
	fset.StringVar(&c.endTime, "end-time", "", "when non-empty, reports trades closed before this date")
	return "pnl", fset, cli.CmdFunc(c.run)
}

func (c *PnL) timeRange() (*timerange.Range, error) {
	r, err := timerange.Period(c.period, time.Now())
	if err != nil {
		return nil, err
	}
	parse := func(s string) (time.Time, error) {
		v, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("could not parse date %q: %w", s, err)
		}
		return v, nil
	}
	if len(c.beginTime) != 0 {
		if r.Begin, err = parse(c.beginTime); err != nil {
			return nil, err
		}
	}
	if len(c.endTime) != 0 {
		if r.End, err = parse(c.endTime); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (c *PnL) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	r, err := c.timeRange()
	if err != nil {
		return err
	}

	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	trades, err := pnl.FromClient(ctx, client, c.pages)
	if err != nil {
		return err
	}
	trades = pnl.Closed(trades, r)
	if c.asJSON {
		return printJSON(os.Stdout, trades)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Symbol\tKind\tQuantity\tOpened\tOpenPrice\tClosed\tClosePrice\tProfitLoss\t\n")
	for _, t := range trades {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			t.Symbol, t.AssetKind, t.Close.CumulativeQuantity,
			t.Open.CreateTime.Time.Local().Format("2006-01-02"), t.OpenPrice.StringFixed(2),
			t.Close.CreateTime.Time.Local().Format("2006-01-02"), t.ClosePrice.StringFixed(2),
			t.ProfitLoss().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t\t\t\t\tTotal\t%s\t\n", pnl.Total(trades).StringFixed(2))
	return tw.Flush()
}
