// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bvk/tradinhood/robinhood"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Holdings struct {
	cmdutil.ClientFlags

	opts robinhood.HoldingsOptions

	asJSON bool
}

func (c *Holdings) Purpose() string {
	return "Prints the account balances and owned assets"
}

func (c *Holdings) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("holdings", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.BoolVar(&c.opts.SkipStocks, "skip-stocks", false, "when true, stocks are not printed")
	fset.BoolVar(&c.opts.SkipCurrencies, "skip-currencies", false, "when true, currencies are not printed")
	fset.BoolVar(&c.opts.IncludeHeld, "include-held", false, "when true, quantities held for pending orders are included")
	fset.BoolVar(&c.opts.IncludeZero, "include-zero", false, "when true, assets with zero quantity are also printed")
	fset.BoolVar(&c.asJSON, "json", false, "when true, prints the holdings in json format")
	return "holdings", fset, cli.CmdFunc(c.run)
}

type holdingItem struct {
	Symbol   string
	Kind     string
	Quantity string
	Name     string
}

func (c *Holdings) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.AccountInfo(ctx)
	if err != nil {
		return err
	}
	holdings, err := client.Holdings(ctx, &c.opts)
	if err != nil {
		return err
	}

	var items []*holdingItem
	for _, h := range holdings {
		items = append(items, &holdingItem{
			Symbol:   h.Asset.Code(),
			Kind:     string(h.Asset.Kind()),
			Quantity: h.Quantity.String(),
			Name:     h.Asset.Name(),
		})
	}

	if c.asJSON {
		return printJSON(os.Stdout, map[string]any{
			"Account":  info,
			"Holdings": items,
		})
	}

	fmt.Printf("Account: %s\n", info.AccountNumber)
	fmt.Printf("Cash: %s\n", info.Cash.StringFixed(2))
	fmt.Printf("Buying Power: %s\n", info.BuyingPower.StringFixed(2))
	fmt.Printf("Unsettled Funds: %s\n", info.UnsettledFunds.StringFixed(2))
	fmt.Println()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Symbol\tKind\tQuantity\tName\n")
	for _, v := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Symbol, v.Kind, v.Quantity, v.Name)
	}
	return tw.Flush()
}
