// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Quote struct {
	cmdutil.ClientFlags

	asJSON bool
}

func (c *Quote) Purpose() string {
	return "Prints the current prices of stocks and currencies"
}

func (c *Quote) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("quote", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.BoolVar(&c.asJSON, "json", false, "when true, prints the quotes in json format")
	return "quote", fset, cli.CmdFunc(c.run)
}

type quoteItem struct {
	Symbol     string
	Kind       string
	Name       string
	Price      string
	Bid        string
	Ask        string
	MarketOpen bool
}

func (c *Quote) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("this command takes one or more symbol arguments")
	}

	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	var items []*quoteItem
	for _, symbol := range cmdutil.SplitSymbols(joinArgs(args)) {
		asset, err := client.Lookup(ctx, symbol)
		if err != nil {
			return fmt.Errorf("could not lookup symbol %q: %w", symbol, err)
		}
		q, err := asset.Quote(ctx)
		if err != nil {
			return fmt.Errorf("could not fetch quote for %q: %w", symbol, err)
		}
		open, err := asset.MarketOpen(ctx)
		if err != nil {
			return fmt.Errorf("could not fetch market hours for %q: %w", symbol, err)
		}
		items = append(items, &quoteItem{
			Symbol:     asset.Code(),
			Kind:       string(asset.Kind()),
			Name:       asset.Name(),
			Price:      q.Price.String(),
			Bid:        q.Bid.String(),
			Ask:        q.Ask.String(),
			MarketOpen: open,
		})
	}

	if c.asJSON {
		return printJSON(os.Stdout, items)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Symbol\tKind\tPrice\tBid\tAsk\tOpen\tName\n")
	for _, v := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n", v.Symbol, v.Kind, v.Price, v.Bid, v.Ask, v.MarketOpen, v.Name)
	}
	return tw.Flush()
}
