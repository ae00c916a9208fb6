// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/robinhood"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Orders struct {
	cmdutil.ClientFlags

	kind  string
	state string
	pages int

	asJSON bool
}

func (c *Orders) Purpose() string {
	return "Prints the recent order history, newest first"
}

func (c *Orders) Description() string {
	return `

Command "orders" prints the recent stock and currency orders. Order history is
paginated by the brokerage, so only the most recent -pages pages are fetched
for each asset kind. Use a negative -pages value to fetch the entire history.

EXAMPLES

    # Print filled currency orders

    $ tradinhood orders -kind currency -state filled

    # Print an order, given its id, in json format

    $ tradinhood orders -json -kind stock 6530a5a2-8a2c-4b5b-9b55-3a0a7e0e0f0a

`
}

func (c *Orders) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("orders", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.kind, "kind", "", "when non-empty, prints only the stock or currency orders")
	fset.StringVar(&c.state, "state", "", "when non-empty, prints only the orders in this state")
	fset.IntVar(&c.pages, "pages", 0, "number of history pages to fetch (default -order-pages)")
	fset.BoolVar(&c.asJSON, "json", false, "when true, prints the orders in json format")
	return "orders", fset, cli.CmdFunc(c.run)
}

func (c *Orders) run(ctx context.Context, args []string) error {
	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	var orders []*robinhood.Order
	if len(args) != 0 {
		// Explicit order ids.
		kind, err := parseKind(c.kind)
		if err != nil {
			return err
		}
		for _, id := range args {
			order, err := client.GetOrder(ctx, kind, id)
			if err != nil {
				return err
			}
			orders = append(orders, order)
		}
	} else {
		opts := &robinhood.QueryOptions{
			Pages: c.pages,
			State: exchange.OrderState(c.state),
		}
		if len(c.kind) != 0 {
			kind, err := parseKind(c.kind)
			if err != nil {
				return err
			}
			opts.SkipStocks = kind != exchange.StockAsset
			opts.SkipCurrencies = kind != exchange.CurrencyAsset
		}
		if orders, err = client.QueryOrders(ctx, opts); err != nil {
			return err
		}
	}

	snapshots := make([]*gobs.Order, 0, len(orders))
	for _, o := range orders {
		snapshots = append(snapshots, o.Snapshot())
	}
	if c.asJSON {
		return printJSON(os.Stdout, snapshots)
	}
	return printOrders(snapshots)
}

func printOrders(orders []*gobs.Order) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "CreateTime\tSymbol\tSide\tType\tState\tQuantity\tFilled\tAvgPrice\tID\n")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.CreateTime.Time.Local().Format("2006-01-02 15:04:05"), o.Symbol, o.Side, o.Type, o.State,
			o.Quantity, o.CumulativeQuantity, o.AveragePrice, o.ServerOrderID)
	}
	return tw.Flush()
}
