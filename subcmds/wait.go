// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/bvk/tradinhood/robinhood"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/visvasity/cli"
	"github.com/visvasity/topic"
)

type Wait struct {
	cmdutil.ClientFlags

	kind    string
	delay   time.Duration
	timeout time.Duration
	force   bool
}

func (c *Wait) Purpose() string {
	return "Waits for orders to be filled or cancelled"
}

func (c *Wait) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("wait", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.kind, "kind", "stock", "asset kind of the orders (stock|currency)")
	fset.DurationVar(&c.delay, "delay", 5*time.Second, "interval between the order state checks")
	fset.DurationVar(&c.timeout, "timeout", time.Minute, "maximum time to wait for the orders")
	fset.BoolVar(&c.force, "force", false, "when true, incomplete orders are cancelled after the timeout")
	return "wait", fset, cli.CmdFunc(c.run)
}

func (c *Wait) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("this command takes one or more order id arguments")
	}
	kind, err := parseKind(c.kind)
	if err != nil {
		return err
	}

	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	var orders []*robinhood.Order
	for _, id := range args {
		order, err := client.GetOrder(ctx, kind, id)
		if err != nil {
			return err
		}
		orders = append(orders, order)
	}

	receiver, err := client.OrderUpdates()
	if err != nil {
		return err
	}
	defer receiver.Close()

	updatesCh, err := topic.ReceiveCh(receiver)
	if err != nil {
		return err
	}
	go func() {
		for update := range updatesCh {
			slog.Info("order state", "order", update.OrderID, "symbol", update.Symbol, "state", update.State)
		}
	}()

	done, err := client.WaitForOrders(ctx, orders, c.delay, c.timeout, c.force)
	if err != nil {
		return err
	}
	for _, o := range orders {
		if err := o.Refresh(ctx); err != nil {
			slog.Warn("could not refresh order details (ignored)", "order", o.ID(), "err", err)
		}
		s := o.Snapshot()
		fmt.Printf("%s %s %s %s %s@%s\n", s.ServerOrderID, s.Symbol, s.Side, s.State, s.CumulativeQuantity, s.AveragePrice)
	}
	if !done {
		return fmt.Errorf("orders are not complete after %v", c.timeout)
	}
	return nil
}
