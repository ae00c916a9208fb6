// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/robinhood/internal"
	"github.com/shopspring/decimal"
)

type AccountInfo struct {
	AccountNumber string

	Cash             decimal.Decimal
	BuyingPower      decimal.Decimal
	WithdrawableCash decimal.Decimal
	UnsettledFunds   decimal.Decimal
}

// AccountInfo fetches the cash balances of the stock account.
func (c *Client) AccountInfo(ctx context.Context) (*AccountInfo, error) {
	v, err := c.client.GetAccount(ctx, c.accountNumber)
	if err != nil {
		return nil, fmt.Errorf("could not fetch account info: %w", err)
	}
	return &AccountInfo{
		AccountNumber:    c.accountNumber,
		Cash:             v.Cash,
		BuyingPower:      v.BuyingPower,
		WithdrawableCash: v.CashAvailableForWithdrawal,
		UnsettledFunds:   v.UnsettledFunds,
	}, nil
}

func (c *Client) BuyingPower(ctx context.Context) (decimal.Decimal, error) {
	info, err := c.AccountInfo(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return info.BuyingPower, nil
}

type HoldingsOptions struct {
	SkipStocks     bool
	SkipCurrencies bool

	// IncludeHeld adds the quantities held for pending orders and other
	// operations to the owned quantities.
	IncludeHeld bool

	// IncludeZero keeps the assets with zero quantity.
	IncludeZero bool
}

// Holding is an owned asset and its quantity.
type Holding struct {
	Asset    Asset
	Quantity decimal.Decimal
}

// Holdings returns all owned stocks and currencies.
func (c *Client) Holdings(ctx context.Context, opts *HoldingsOptions) ([]*Holding, error) {
	if opts == nil {
		opts = new(HoldingsOptions)
	}

	var holdings []*Holding
	add := func(asset Asset, quantity decimal.Decimal) {
		if quantity.IsZero() && !opts.IncludeZero {
			return
		}
		holdings = append(holdings, &Holding{Asset: asset, Quantity: quantity})
	}

	if !opts.SkipStocks {
		positions, err := c.client.ListPositions(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not list positions: %w", err)
		}
		for _, p := range positions {
			stock, err := c.StockByURL(ctx, p.Instrument)
			if err != nil {
				return nil, err
			}
			add(stock, positionQuantity(p, opts.IncludeHeld))
		}
	}

	if !opts.SkipCurrencies {
		rows, err := c.client.ListHoldings(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not list currency holdings: %w", err)
		}
		for _, h := range rows {
			cur, ok := c.currencyCodeMap.Load(strings.ToUpper(h.Currency.Code))
			if !ok {
				slog.Warn("skipping holding with unknown currency code", "code", h.Currency.Code)
				continue
			}
			add(cur, holdingQuantity(h, opts.IncludeHeld))
		}
	}
	return holdings, nil
}

func positionQuantity(p *internal.Position, includeHeld bool) decimal.Decimal {
	if includeHeld {
		return p.Quantity.Add(p.Held())
	}
	return p.Quantity
}

func holdingQuantity(h *internal.Holding, includeHeld bool) decimal.Decimal {
	if includeHeld {
		return h.QuantityAvailable.Add(h.Held())
	}
	return h.QuantityAvailable
}

// Quantity returns the owned quantity of an asset, which is zero if the asset
// is not owned.
func (c *Client) Quantity(ctx context.Context, asset Asset, includeHeld bool) (decimal.Decimal, error) {
	opts := &HoldingsOptions{
		SkipStocks:     asset.Kind() != exchange.StockAsset,
		SkipCurrencies: asset.Kind() != exchange.CurrencyAsset,
		IncludeHeld:    includeHeld,
	}
	holdings, err := c.Holdings(ctx, opts)
	if err != nil {
		return decimal.Zero, err
	}
	for _, h := range holdings {
		if h.Asset.ID() == asset.ID() {
			return h.Quantity, nil
		}
	}
	return decimal.Zero, nil
}

// StockQuotes fetches quotes for multiple stocks in a single request. Stocks
// without a quote are absent in the result.
func (c *Client) StockQuotes(ctx context.Context, stocks []*Stock) (map[string]*Quote, error) {
	urls := make([]string, 0, len(stocks))
	for _, s := range stocks {
		urls = append(urls, s.url)
	}
	quotes, err := c.client.GetQuotes(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("could not fetch stock quotes: %w", err)
	}
	result := make(map[string]*Quote)
	for _, q := range quotes {
		if q == nil {
			continue
		}
		result[q.Symbol] = stockQuote(q)
	}
	return result, nil
}
