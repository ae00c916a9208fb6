// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/robinhood/internal"
	"github.com/shopspring/decimal"
)

// Quote is a live quote for an asset. Quotes are never cached.
type Quote struct {
	Price decimal.Decimal
	Bid   decimal.Decimal
	Ask   decimal.Decimal

	FetchedAt time.Time
}

// Asset is either a *Stock or a *Currency.
type Asset interface {
	Kind() exchange.AssetKind

	// ID returns the instrument id for stocks and the currency pair id for
	// currencies.
	ID() string

	// Code returns the ticker symbol for stocks and the currency code
	// (ex: BTC) for currencies.
	Code() string

	Name() string
	Tradable() bool

	Quote(ctx context.Context) (*Quote, error)
	MarketOpen(ctx context.Context) (bool, error)
	History(ctx context.Context, bounds, interval, span string) ([]*gobs.Candle, error)
}

// Price returns the current price of the asset, which is the last trade price
// for stocks and the mark price for currencies.
func Price(ctx context.Context, a Asset) (decimal.Decimal, error) {
	q, err := a.Quote(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Price, nil
}

func Bid(ctx context.Context, a Asset) (decimal.Decimal, error) {
	q, err := a.Quote(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Bid, nil
}

func Ask(ctx context.Context, a Asset) (decimal.Decimal, error) {
	q, err := a.Quote(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Ask, nil
}

var intervalDurations = map[string]time.Duration{
	"15second": 15 * time.Second,
	"5minute":  5 * time.Minute,
	"10minute": 10 * time.Minute,
	"hour":     time.Hour,
	"day":      24 * time.Hour,
	"week":     7 * 24 * time.Hour,
}

// IntervalDuration returns the duration of a history interval name.
func IntervalDuration(interval string) (time.Duration, error) {
	d, ok := intervalDurations[interval]
	if !ok {
		return 0, fmt.Errorf("history interval %q is not supported: %w", interval, os.ErrInvalid)
	}
	return d, nil
}

func toCandles(interval string, frames []*internal.HistoricalFrame) ([]*gobs.Candle, error) {
	d, err := IntervalDuration(interval)
	if err != nil {
		return nil, err
	}
	candles := make([]*gobs.Candle, 0, len(frames))
	for _, f := range frames {
		candles = append(candles, &gobs.Candle{
			StartTime: f.BeginsAt,
			Duration:  d,
			Low:       f.LowPrice,
			High:      f.HighPrice,
			Open:      f.OpenPrice,
			Close:     f.ClosePrice,
			Volume:    f.Volume,
		})
	}
	return candles, nil
}
