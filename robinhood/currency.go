// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"fmt"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/robinhood/internal"
	"github.com/shopspring/decimal"
)

// Currency is a cryptocurrency pair (ex: BTC-USD) traded through the nummus
// endpoints.
type Currency struct {
	client *Client

	pairID  string
	symbol  string
	code    string
	name    string
	assetID string

	tradable bool

	minOrderSize      decimal.Decimal
	quantityIncrement decimal.Decimal
	priceIncrement    decimal.Decimal
}

var _ Asset = &Currency{}

func newCurrency(c *Client, v *internal.CurrencyPair) *Currency {
	return &Currency{
		client:            c,
		pairID:            v.ID,
		symbol:            v.Symbol,
		code:              v.AssetCurrency.Code,
		name:              v.AssetCurrency.Name,
		assetID:           v.AssetCurrency.ID,
		tradable:          v.Tradability == "tradable",
		minOrderSize:      v.MinOrderSize,
		quantityIncrement: v.MinOrderQuantityIncrement,
		priceIncrement:    v.MinOrderPriceIncrement,
	}
}

func (v *Currency) String() string {
	return fmt.Sprintf("<Currency (%s) [%s]>", v.name, v.symbol)
}

func (v *Currency) Kind() exchange.AssetKind {
	return exchange.CurrencyAsset
}

// ID returns the currency pair id.
func (v *Currency) ID() string {
	return v.pairID
}

// Code returns the asset currency code (ex: BTC).
func (v *Currency) Code() string {
	return v.code
}

// Symbol returns the pair symbol (ex: BTC-USD).
func (v *Currency) Symbol() string {
	return v.symbol
}

func (v *Currency) Name() string {
	return v.name
}

// AssetID returns the asset currency id, which is used in holdings.
func (v *Currency) AssetID() string {
	return v.assetID
}

func (v *Currency) Tradable() bool {
	return v.tradable
}

func (v *Currency) MinOrderSize() decimal.Decimal {
	return v.minOrderSize
}

func (v *Currency) QuantityIncrement() decimal.Decimal {
	return v.quantityIncrement
}

func (v *Currency) PriceIncrement() decimal.Decimal {
	return v.priceIncrement
}

func (v *Currency) Quote(ctx context.Context) (*Quote, error) {
	q, err := v.client.client.GetForexQuote(ctx, v.pairID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch quote for %s: %w", v.symbol, err)
	}
	return &Quote{
		Price:     q.MarkPrice,
		Bid:       q.BidPrice,
		Ask:       q.AskPrice,
		FetchedAt: time.Now(),
	}, nil
}

// MarketOpen always returns true; currency markets never close.
func (v *Currency) MarketOpen(ctx context.Context) (bool, error) {
	return true, nil
}

// History returns price history for the currency pair. Bounds is usually
// 24_7 for currencies.
func (v *Currency) History(ctx context.Context, bounds, interval, span string) ([]*gobs.Candle, error) {
	resp, err := v.client.client.GetForexHistoricals(ctx, v.pairID, bounds, interval, span)
	if err != nil {
		return nil, fmt.Errorf("could not fetch history for %s: %w", v.symbol, err)
	}
	return toCandles(interval, resp.Frames())
}
