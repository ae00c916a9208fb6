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

// Stock is a tradable security identified by its instrument id.
type Stock struct {
	client *Client

	id         string
	url        string
	symbol     string
	name       string
	simpleName string
	kind       string
	marketURL  string

	tradable   bool
	fractional bool

	chainID   string
	bloomberg string

	minTickSize decimal.Decimal
}

var _ Asset = &Stock{}

func newStock(c *Client, v *internal.Instrument) *Stock {
	url := v.URL
	if url == "" {
		url = c.client.InstrumentURL(v.ID)
	}
	return &Stock{
		client:      c,
		id:          v.ID,
		url:         url,
		symbol:      v.Symbol,
		name:        v.Name,
		simpleName:  v.SimpleName,
		kind:        v.Type,
		marketURL:   v.Market,
		tradable:    v.Tradeable,
		fractional:  v.FractionalTradability == "tradable" || v.FractionalTradability == "tradeable",
		chainID:     v.TradableChainID,
		bloomberg:   v.BloombergUnique,
		minTickSize: v.MinTickSize,
	}
}

func (s *Stock) String() string {
	return fmt.Sprintf("<Stock (%s) [%s]>", s.simpleName, s.symbol)
}

func (s *Stock) Kind() exchange.AssetKind {
	return exchange.StockAsset
}

func (s *Stock) ID() string {
	return s.id
}

func (s *Stock) Code() string {
	return s.symbol
}

func (s *Stock) Name() string {
	return s.name
}

// SimpleName returns the short display name, which may be empty.
func (s *Stock) SimpleName() string {
	return s.simpleName
}

// InstrumentURL returns the instrument url used to refer to the stock in
// orders and positions.
func (s *Stock) InstrumentURL() string {
	return s.url
}

// Type returns the instrument type (ex: stock, etp, adr).
func (s *Stock) Type() string {
	return s.kind
}

func (s *Stock) Tradable() bool {
	return s.tradable
}

// Fractional returns true if fractional quantities can be traded.
func (s *Stock) Fractional() bool {
	return s.fractional
}

func (s *Stock) TradableChainID() string {
	return s.chainID
}

func (s *Stock) BloombergUnique() string {
	return s.bloomberg
}

func (s *Stock) Quote(ctx context.Context) (*Quote, error) {
	q, err := s.client.client.GetQuote(ctx, s.symbol)
	if err != nil {
		return nil, fmt.Errorf("could not fetch quote for %s: %w", s.symbol, err)
	}
	return stockQuote(q), nil
}

func stockQuote(q *internal.Quote) *Quote {
	return &Quote{
		Price:     q.LastTradePrice,
		Bid:       q.BidPrice,
		Ask:       q.AskPrice,
		FetchedAt: time.Now(),
	}
}

// MarketOpen returns true if the stock's market is open today.
func (s *Stock) MarketOpen(ctx context.Context) (bool, error) {
	if s.marketURL == "" {
		return false, fmt.Errorf("stock %s has no market: %w", s.symbol, exchange.ErrAPI)
	}
	hours, err := s.client.client.GetMarketHours(ctx, s.marketURL, time.Now())
	if err != nil {
		return false, fmt.Errorf("could not fetch market hours for %s: %w", s.symbol, err)
	}
	return hours.IsOpen, nil
}

// History returns price history with the given bounds (regular, extended or
// trading), interval (ex: 5minute, day) and span (ex: day, year).
func (s *Stock) History(ctx context.Context, bounds, interval, span string) ([]*gobs.Candle, error) {
	resp, err := s.client.client.GetHistoricals(ctx, s.symbol, bounds, interval, span)
	if err != nil {
		return nil, fmt.Errorf("could not fetch history for %s: %w", s.symbol, err)
	}
	return toCandles(interval, resp.Frames())
}

// Popularity returns the number of open positions for the stock across the
// brokerage's users.
func (s *Stock) Popularity(ctx context.Context) (int64, error) {
	resp, err := s.client.client.GetPopularity(ctx, s.id)
	if err != nil {
		return 0, fmt.Errorf("could not fetch popularity for %s: %w", s.symbol, err)
	}
	return resp.NumOpenPositions, nil
}

func (s *Stock) MinTickSize() decimal.Decimal {
	return s.minTickSize
}
