// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/robinhood"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/shopspring/decimal"
	"github.com/visvasity/cli"
)

// tradeFlags are shared by the buy and sell commands.
type tradeFlags struct {
	cmdutil.ClientFlags

	orderType     string
	price         string
	stopPrice     string
	timeInForce   string
	extendedHours bool

	wait      time.Duration
	waitDelay time.Duration
}

func (f *tradeFlags) setFlags(fset *flag.FlagSet) {
	f.ClientFlags.SetFlags(fset)
	fset.StringVar(&f.orderType, "type", "market", "order type (market|limit|stoploss|stoplimit)")
	fset.StringVar(&f.price, "price", "", "limit price (default is the current price)")
	fset.StringVar(&f.stopPrice, "stop-price", "", "stop price for the stop orders")
	fset.StringVar(&f.timeInForce, "time-in-force", "gtc", "time in force (gtc|gfd|ioc|opg)")
	fset.BoolVar(&f.extendedHours, "extended-hours", false, "when true, stock orders can execute in the extended hours")
	fset.DurationVar(&f.wait, "wait", 0, "when positive, waits for the order completion and cancels it after this timeout")
	fset.DurationVar(&f.waitDelay, "wait-delay", 5*time.Second, "interval between the order state checks")
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	if len(s) == 0 {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not parse %s %q: %w", name, s, err)
	}
	return v, nil
}

func (f *tradeFlags) request(qty string) (*robinhood.OrderRequest, error) {
	quantity, err := parseDecimal("quantity", qty)
	if err != nil {
		return nil, err
	}
	price, err := parseDecimal("price", f.price)
	if err != nil {
		return nil, err
	}
	stopPrice, err := parseDecimal("stop price", f.stopPrice)
	if err != nil {
		return nil, err
	}
	return &robinhood.OrderRequest{
		Quantity:      quantity,
		Type:          exchange.OrderType(f.orderType),
		Price:         price,
		StopPrice:     stopPrice,
		TimeInForce:   exchange.TimeInForce(f.timeInForce),
		ExtendedHours: f.extendedHours,
	}, nil
}

func (f *tradeFlags) trade(ctx context.Context, side exchange.Side, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("this command takes symbol and quantity arguments")
	}
	req, err := f.request(args[1])
	if err != nil {
		return err
	}

	client, err := f.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	asset, err := client.Lookup(ctx, args[0])
	if err != nil {
		return fmt.Errorf("could not lookup symbol %q: %w", args[0], err)
	}

	var order *robinhood.Order
	if side == exchange.Buy {
		order, err = client.Buy(ctx, asset, req)
	} else {
		order, err = client.Sell(ctx, asset, req)
	}
	if err != nil {
		return err
	}

	if f.wait > 0 {
		orders := []*robinhood.Order{order}
		done, err := client.WaitForOrders(ctx, orders, f.waitDelay, f.wait, true /* force */)
		if err != nil {
			return err
		}
		if !done {
			printOrders([]*gobs.Order{order.Snapshot()})
			return fmt.Errorf("order %s is not complete after %v", order.ID(), f.wait)
		}
	}
	return printOrders([]*gobs.Order{order.Snapshot()})
}

type Buy struct {
	tradeFlags
}

func (c *Buy) Purpose() string {
	return "Places a buy order"
}

func (c *Buy) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("buy", flag.ContinueOnError)
	c.tradeFlags.setFlags(fset)
	return "buy", fset, cli.CmdFunc(c.run)
}

func (c *Buy) run(ctx context.Context, args []string) error {
	return c.tradeFlags.trade(ctx, exchange.Buy, args)
}

type Sell struct {
	tradeFlags
}

func (c *Sell) Purpose() string {
	return "Places a sell order"
}

func (c *Sell) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("sell", flag.ContinueOnError)
	c.tradeFlags.setFlags(fset)
	return "sell", fset, cli.CmdFunc(c.run)
}

func (c *Sell) run(ctx context.Context, args []string) error {
	return c.tradeFlags.trade(ctx, exchange.Sell, args)
}
