// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"fmt"
	"slices"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/robinhood/internal"
)

type QueryOptions struct {
	SkipStocks     bool
	SkipCurrencies bool

	// Pages limits the number of history pages per asset kind. Zero uses the
	// client default and negative value fetches all pages.
	Pages int

	// SkipLookup avoids fetching unknown instruments; such orders have a nil
	// asset.
	SkipLookup bool

	// State, when non-empty, keeps only the orders last seen in the state.
	State exchange.OrderState

	// Unsorted keeps the brokerage order instead of the newest first order.
	Unsorted bool
}

// QueryOrders returns the recent order history.
func (c *Client) QueryOrders(ctx context.Context, opts *QueryOptions) ([]*Order, error) {
	if opts == nil {
		opts = new(QueryOptions)
	}
	pages := opts.Pages
	if pages == 0 {
		pages = c.opts.OrderPages
	}

	var raw []*internal.Order
	if !opts.SkipStocks {
		vs, err := c.client.ListStockOrders(ctx, pages)
		if err != nil {
			return nil, fmt.Errorf("could not list stock orders: %w", err)
		}
		raw = append(raw, vs...)
	}
	if !opts.SkipCurrencies {
		vs, err := c.client.ListCryptoOrders(ctx, pages)
		if err != nil {
			return nil, fmt.Errorf("could not list currency orders: %w", err)
		}
		raw = append(raw, vs...)
	}

	var orders []*Order
	for _, v := range raw {
		if opts.State != "" && exchange.OrderState(v.State) != opts.State {
			continue
		}
		order, err := c.newOrder(ctx, v, !opts.SkipLookup)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if !opts.Unsorted {
		slices.SortStableFunc(orders, func(a, b *Order) int {
			return b.createdAt.Compare(a.createdAt)
		})
	}
	return orders, nil
}

// GetOrder fetches a single order by its id and asset kind.
func (c *Client) GetOrder(ctx context.Context, kind exchange.AssetKind, id string) (*Order, error) {
	var v *internal.Order
	var err error
	if kind == exchange.CurrencyAsset {
		v, err = c.client.GetCryptoOrder(ctx, id)
	} else {
		v, err = c.client.GetStockOrder(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("could not fetch order %s: %w", id, err)
	}
	return c.newOrder(ctx, v, true)
}
