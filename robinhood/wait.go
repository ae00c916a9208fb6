// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bvk/tradinhood/ctxutil"
)

// allTerminal fetches order states one by one and returns false at the first
// order that is not in a terminal state.
func allTerminal(ctx context.Context, orders []*Order) (bool, error) {
	for _, o := range orders {
		state, err := o.State(ctx)
		if err != nil {
			return false, err
		}
		if !state.IsTerminal() {
			return false, nil
		}
	}
	return true, nil
}

// WaitForOrders blocks the caller till all orders are filled or cancelled or
// till the timeout. Order states are polled every delay interval, so at most
// timeout/delay polls are performed.
//
// When force is true, orders that are still incomplete after the wait receive
// a cancel request. Cancel failures are logged and ignored. Returned boolean
// is true if all orders are found in a terminal state after the forced
// cancellations.
func (c *Client) WaitForOrders(ctx context.Context, orders []*Order, delay, timeout time.Duration, force bool) (bool, error) {
	if delay <= 0 || timeout < 0 {
		return false, fmt.Errorf("delay must be positive and timeout cannot be negative: %w", os.ErrInvalid)
	}

	checks := int(timeout / delay)
	for {
		done, err := allTerminal(ctx, orders)
		if err != nil {
			return false, err
		}
		if done || checks <= 0 {
			break
		}
		if err := ctxutil.Sleep(ctx, delay); err != nil {
			return false, err
		}
		checks--
	}

	if force {
		for _, o := range orders {
			state, err := o.State(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return false, context.Cause(ctx)
				}
				slog.Warn("could not fetch order state before cancel (ignored)", "order", o.id, "err", err)
				continue
			}
			if state.IsTerminal() {
				continue
			}
			if err := o.Cancel(ctx); err != nil {
				if ctx.Err() != nil {
					return false, context.Cause(ctx)
				}
				if !errors.Is(err, context.Canceled) {
					slog.Warn("could not cancel incomplete order (ignored)", "order", o.id, "state", state, "err", err)
				}
				continue
			}
			slog.Info("cancelled incomplete order", "order", o.id, "state", state)
		}
	}

	return allTerminal(ctx, orders)
}
