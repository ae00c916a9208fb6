// Copyright (c) 2025 BVK Chaitanya

package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"
)

// InstrumentID returns the instrument id from an instrument url.
func InstrumentID(instrumentURL string) string {
	u, err := url.Parse(instrumentURL)
	if err != nil {
		return ""
	}
	return path.Base(strings.TrimSuffix(u.Path, "/"))
}

// InstrumentURL returns the canonical instrument url for an instrument id.
func (c *Client) InstrumentURL(id string) string {
	return c.APIPath("instruments", id).String()
}

// AccountURL returns the canonical account url for an account number.
func (c *Client) AccountURL(number string) string {
	return c.APIPath("accounts", number).String()
}

func logError(err error, msg string, args ...any) {
	if !errors.Is(err, context.Canceled) {
		slog.Error(msg, append(args, "err", err)...)
	}
}

func (c *Client) ListCurrencyPairs(ctx context.Context) ([]*CurrencyPair, error) {
	pairs, err := getPages[CurrencyPair](ctx, c, c.NummusPath("currency_pairs"), 0)
	if err != nil {
		logError(err, "could not list currency pairs")
		return nil, err
	}
	return pairs, nil
}

func (c *Client) GetCurrencyPair(ctx context.Context, id string) (*CurrencyPair, error) {
	resp := new(CurrencyPair)
	if err := getJSON(ctx, c, c.NummusPath("currency_pairs", id), resp); err != nil {
		logError(err, "could not get currency pair", "id", id)
		return nil, err
	}
	return resp, nil
}

func (c *Client) ListAccounts(ctx context.Context) ([]*Account, error) {
	return getPages[Account](ctx, c, c.APIPath("accounts"), 1)
}

func (c *Client) GetAccount(ctx context.Context, number string) (*Account, error) {
	resp := new(Account)
	if err := getJSON(ctx, c, c.APIPath("accounts", number), resp); err != nil {
		logError(err, "could not get account", "account", number)
		return nil, err
	}
	return resp, nil
}

func (c *Client) ListNummusAccounts(ctx context.Context) ([]*NummusAccount, error) {
	return getPages[NummusAccount](ctx, c, c.NummusPath("accounts"), 1)
}

func (c *Client) GetInstrument(ctx context.Context, id string) (*Instrument, error) {
	resp := new(Instrument)
	if err := getJSON(ctx, c, c.APIPath("instruments", id), resp); err != nil {
		logError(err, "could not get instrument", "id", id)
		return nil, err
	}
	return resp, nil
}

// FindInstruments returns the first page of instruments with given symbol,
// including inactive instruments.
func (c *Client) FindInstruments(ctx context.Context, symbol string) ([]*Instrument, error) {
	addrURL := c.APIPath("instruments")
	values := make(url.Values)
	values.Set("active_instruments_only", "false")
	values.Set("symbol", symbol)
	addrURL.RawQuery = values.Encode()
	return getPages[Instrument](ctx, c, addrURL, 1)
}

func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	resp := new(Quote)
	if err := getJSON(ctx, c, c.APIPath("quotes", symbol), resp); err != nil {
		logError(err, "could not get quote", "symbol", symbol)
		return nil, err
	}
	return resp, nil
}

// GetQuotes returns quotes for multiple instruments in a single request.
// Response can have nil entries for unknown instruments.
func (c *Client) GetQuotes(ctx context.Context, instrumentURLs []string) ([]*Quote, error) {
	addrURL := c.APIPath("quotes")
	values := make(url.Values)
	values.Set("bounds", "trading")
	values.Set("include_inactive", "true")
	values.Set("instruments", strings.Join(instrumentURLs, ","))
	addrURL.RawQuery = values.Encode()

	page := new(Page[Quote])
	if err := getJSON(ctx, c, addrURL, page); err != nil {
		logError(err, "could not get quotes", "count", len(instrumentURLs))
		return nil, err
	}
	return page.Results, nil
}

func historicalsQuery(bounds, interval, span string) string {
	values := make(url.Values)
	values.Set("bounds", bounds)
	values.Set("interval", interval)
	values.Set("span", span)
	return values.Encode()
}

func (c *Client) GetHistoricals(ctx context.Context, symbol, bounds, interval, span string) (*Historicals, error) {
	addrURL := c.APIPath("marketdata", "historicals", symbol)
	addrURL.RawQuery = historicalsQuery(bounds, interval, span)
	resp := new(Historicals)
	if err := getJSON(ctx, c, addrURL, resp); err != nil {
		logError(err, "could not get historicals", "symbol", symbol, "interval", interval, "span", span)
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetForexQuote(ctx context.Context, pairID string) (*ForexQuote, error) {
	resp := new(ForexQuote)
	if err := getJSON(ctx, c, c.APIPath("marketdata", "forex", "quotes", pairID), resp); err != nil {
		logError(err, "could not get forex quote", "pair", pairID)
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetForexHistoricals(ctx context.Context, pairID, bounds, interval, span string) (*Historicals, error) {
	addrURL := c.APIPath("marketdata", "forex", "historicals", pairID)
	addrURL.RawQuery = historicalsQuery(bounds, interval, span)
	resp := new(Historicals)
	if err := getJSON(ctx, c, addrURL, resp); err != nil {
		logError(err, "could not get forex historicals", "pair", pairID, "interval", interval, "span", span)
		return nil, err
	}
	return resp, nil
}

// GetMarketHours returns the trading hours of a market on the given date.
func (c *Client) GetMarketHours(ctx context.Context, marketURL string, date time.Time) (*MarketHours, error) {
	base, err := url.Parse(marketURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse market url %q: %w", marketURL, err)
	}
	addrURL := joinPath(base, "hours", date.Format(time.DateOnly))
	resp := new(MarketHours)
	if err := getJSON(ctx, c, addrURL, resp); err != nil {
		logError(err, "could not get market hours", "market", marketURL)
		return nil, err
	}
	return resp, nil
}

func (c *Client) ListPositions(ctx context.Context) ([]*Position, error) {
	return getPages[Position](ctx, c, c.APIPath("positions"), 0)
}

func (c *Client) ListHoldings(ctx context.Context) ([]*Holding, error) {
	return getPages[Holding](ctx, c, c.NummusPath("holdings"), 0)
}

func (c *Client) CreateStockOrder(ctx context.Context, req *CreateStockOrderRequest) (*Order, error) {
	resp := new(Order)
	if err := postJSON(ctx, c, c.APIPath("orders"), req, resp); err != nil {
		logError(err, "could not create stock order", "symbol", req.Symbol, "side", req.Side, "ref", req.RefID)
		return nil, err
	}
	return resp, nil
}

func (c *Client) CreateCryptoOrder(ctx context.Context, req *CreateCryptoOrderRequest) (*Order, error) {
	resp := new(Order)
	if err := postJSON(ctx, c, c.NummusPath("orders"), req, resp); err != nil {
		logError(err, "could not create crypto order", "pair", req.CurrencyPairID, "side", req.Side, "ref", req.RefID)
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetStockOrder(ctx context.Context, id string) (*Order, error) {
	resp := new(Order)
	if err := getJSON(ctx, c, c.APIPath("orders", id), resp); err != nil {
		logError(err, "could not get stock order", "order", id)
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetCryptoOrder(ctx context.Context, id string) (*Order, error) {
	resp := new(Order)
	if err := getJSON(ctx, c, c.NummusPath("orders", id), resp); err != nil {
		logError(err, "could not get crypto order", "order", id)
		return nil, err
	}
	return resp, nil
}

func (c *Client) ListStockOrders(ctx context.Context, pages int) ([]*Order, error) {
	return getPages[Order](ctx, c, c.APIPath("orders"), pages)
}

func (c *Client) ListCryptoOrders(ctx context.Context, pages int) ([]*Order, error) {
	return getPages[Order](ctx, c, c.NummusPath("orders"), pages)
}

// CancelOrder posts a cancel request to the order's cancel url.
func (c *Client) CancelOrder(ctx context.Context, cancelURL string) error {
	addrURL, err := url.Parse(cancelURL)
	if err != nil {
		return fmt.Errorf("could not parse cancel url %q: %w", cancelURL, err)
	}
	if err := postJSON(ctx, c, addrURL, nil, new(CancelOrderResponse)); err != nil {
		logError(err, "could not cancel order", "url", cancelURL)
		return err
	}
	return nil
}

func (c *Client) GetPopularity(ctx context.Context, instrumentID string) (*Popularity, error) {
	resp := new(Popularity)
	if err := getJSON(ctx, c, c.APIPath("instruments", instrumentID, "popularity"), resp); err != nil {
		logError(err, "could not get instrument popularity", "id", instrumentID)
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetFundamentals(ctx context.Context, instrumentID string) (*Fundamentals, error) {
	addrURL := c.APIPath("marketdata", "fundamentals", instrumentID)
	addrURL.RawQuery = "include_inactive=true"
	resp := new(Fundamentals)
	if err := getJSON(ctx, c, addrURL, resp); err != nil {
		logError(err, "could not get fundamentals", "id", instrumentID)
		return nil, err
	}
	return resp, nil
}

func (c *Client) ListEarnings(ctx context.Context, instrumentURL string, pages int) ([]*Earnings, error) {
	addrURL := c.APIPath("marketdata", "earnings")
	values := make(url.Values)
	values.Set("instrument", instrumentURL)
	addrURL.RawQuery = values.Encode()
	return getPages[Earnings](ctx, c, addrURL, pages)
}

func (c *Client) GetRatings(ctx context.Context, instrumentID string) (*Ratings, error) {
	resp := new(Ratings)
	if err := getJSON(ctx, c, c.APIPath("midlands", "ratings", instrumentID), resp); err != nil {
		logError(err, "could not get ratings", "id", instrumentID)
		return nil, err
	}
	return resp, nil
}

// ListRatings returns the ratings of multiple instruments.
func (c *Client) ListRatings(ctx context.Context, instrumentIDs []string) ([]*Ratings, error) {
	addrURL := c.APIPath("midlands", "ratings")
	values := make(url.Values)
	values.Set("ids", strings.Join(instrumentIDs, ","))
	addrURL.RawQuery = values.Encode()
	return getPages[Ratings](ctx, c, addrURL, 0)
}

func (c *Client) ListNews(ctx context.Context, symbol string, pages int) ([]*NewsArticle, error) {
	return getPages[NewsArticle](ctx, c, c.APIPath("midlands", "news", symbol), pages)
}

func (c *Client) GetSimilar(ctx context.Context, instrumentID string) (*Similar, error) {
	resp := new(Similar)
	if err := getJSON(ctx, c, c.DoraPath("instruments", "similar", instrumentID), resp); err != nil {
		logError(err, "could not get similar instruments", "id", instrumentID)
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetTag(ctx context.Context, tag string) (*Tag, error) {
	resp := new(Tag)
	if err := getJSON(ctx, c, c.APIPath("midlands", "tags", "tag", tag), resp); err != nil {
		logError(err, "could not get tag", "tag", tag)
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetPortfolioHistoricals(ctx context.Context, account, bounds, interval, span string) (*PortfolioHistoricals, error) {
	addrURL := c.APIPath("portfolios", "historicals", account)
	values := make(url.Values)
	values.Set("account", account)
	values.Set("bounds", bounds)
	values.Set("interval", interval)
	values.Set("span", span)
	addrURL.RawQuery = values.Encode()
	resp := new(PortfolioHistoricals)
	if err := getJSON(ctx, c, addrURL, resp); err != nil {
		logError(err, "could not get portfolio historicals", "account", account, "interval", interval, "span", span)
		return nil, err
	}
	return resp, nil
}
