// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/robinhood/internal"
	"github.com/bvk/tradinhood/syncmap"
	"github.com/visvasity/topic"
)

// OrderUpdate is published every time an order state is fetched from the
// brokerage.
type OrderUpdate struct {
	OrderID   string
	AssetKind exchange.AssetKind
	Symbol    string
	State     exchange.OrderState
	FetchedAt time.Time
}

// Client is a session with the brokerage api. Assets discovered through the
// client are cached for the lifetime of the client and are never
// invalidated; a client is meant to be short-lived.
type Client struct {
	opts Options

	client *internal.Client

	accountNumber   string
	accountURL      string
	nummusAccountID string

	// stockMap and currencyMap are keyed by the instrument id and currency
	// pair id respectively. Symbol and code maps point to the same objects.
	stockMap        syncmap.Map[string, *Stock]
	stockSymbolMap  syncmap.Map[string, *Stock]
	currencyMap     syncmap.Map[string, *Currency]
	currencyCodeMap syncmap.Map[string, *Currency]

	orderUpdates *topic.Topic[*OrderUpdate]
}

// New creates a brokerage client using an already issued bearer token. All
// currency pairs are loaded during the initialization.
func New(ctx context.Context, token string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	client, err := internal.New(token, opts.internalOptions())
	if err != nil {
		return nil, err
	}

	c := &Client{
		opts:            *opts,
		client:          client,
		accountNumber:   opts.AccountNumber,
		nummusAccountID: opts.NummusAccountID,
		orderUpdates:    topic.New[*OrderUpdate](),
	}

	if err := c.loadCurrencies(ctx); err != nil {
		return nil, err
	}

	if c.accountNumber == "" {
		accounts, err := c.client.ListAccounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not list accounts: %w", err)
		}
		if len(accounts) == 0 {
			return nil, fmt.Errorf("no brokerage account is found: %w", exchange.ErrAPI)
		}
		c.accountNumber = accounts[0].AccountNumber
	}
	c.accountURL = c.client.AccountURL(c.accountNumber)

	if c.nummusAccountID == "" {
		accounts, err := c.client.ListNummusAccounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not list crypto accounts: %w", err)
		}
		if len(accounts) == 0 {
			slog.Warn("no crypto account is found; currency orders will be rejected")
		} else {
			c.nummusAccountID = accounts[0].ID
		}
	}
	return c, nil
}

// Close releases the resources and closes all order update subscriptions.
func (c *Client) Close() error {
	c.orderUpdates.Close()
	return nil
}

// AccountNumber returns the stock account number.
func (c *Client) AccountNumber() string {
	return c.accountNumber
}

// NummusAccountID returns the crypto account id.
func (c *Client) NummusAccountID() string {
	return c.nummusAccountID
}

// OrderUpdates returns a receiver for order state observations. Receiver
// must be closed by the caller.
func (c *Client) OrderUpdates() (*topic.Receiver[*OrderUpdate], error) {
	return topic.Subscribe(c.orderUpdates, 0, false)
}

func (c *Client) loadCurrencies(ctx context.Context) error {
	pairs, err := c.client.ListCurrencyPairs(ctx)
	if err != nil {
		return fmt.Errorf("could not load currency pairs: %w", err)
	}
	for _, p := range pairs {
		c.cacheCurrency(p)
	}
	return nil
}

func (c *Client) cacheCurrency(v *internal.CurrencyPair) *Currency {
	cur, loaded := c.currencyMap.LoadOrStore(v.ID, newCurrency(c, v))
	if !loaded {
		c.currencyCodeMap.Store(strings.ToUpper(cur.code), cur)
		c.currencyCodeMap.Store(strings.ToUpper(cur.symbol), cur)
	}
	return cur
}

func (c *Client) cacheStock(v *internal.Instrument) *Stock {
	stock, loaded := c.stockMap.LoadOrStore(v.ID, newStock(c, v))
	if !loaded {
		c.stockSymbolMap.Store(strings.ToUpper(stock.symbol), stock)
	}
	return stock
}

// Currencies returns all known currency pairs sorted by the currency code.
func (c *Client) Currencies() []*Currency {
	vs := c.currencyMap.Values()
	slices.SortFunc(vs, func(a, b *Currency) int {
		return strings.Compare(a.code, b.code)
	})
	return vs
}

// Lookup resolves a symbol to an asset. Currency codes (ex: BTC) and pair
// symbols (ex: BTC-USD) are checked first, followed by the known stocks and
// an instrument search as the last resort.
func (c *Client) Lookup(ctx context.Context, symbol string) (Asset, error) {
	key := strings.ToUpper(symbol)
	if cur, ok := c.currencyCodeMap.Load(key); ok {
		return cur, nil
	}
	if stock, ok := c.stockSymbolMap.Load(key); ok {
		return stock, nil
	}
	instruments, err := c.client.FindInstruments(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not lookup symbol %q: %w", symbol, err)
	}
	if len(instruments) == 0 {
		return nil, fmt.Errorf("symbol %q: %w", symbol, exchange.ErrNotFound)
	}
	return c.cacheStock(instruments[0]), nil
}

// LookupStock is similar to Lookup, but only resolves stocks.
func (c *Client) LookupStock(ctx context.Context, symbol string) (*Stock, error) {
	asset, err := c.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	stock, ok := asset.(*Stock)
	if !ok {
		return nil, fmt.Errorf("symbol %q is not a stock: %w", symbol, exchange.ErrNotFound)
	}
	return stock, nil
}

// CachedStock returns the stock with given instrument id only if it is
// already known to the client.
func (c *Client) CachedStock(id string) (*Stock, bool) {
	return c.stockMap.Load(id)
}

// StockByID returns the stock with given instrument id. Known stocks are
// returned from the cache; others are fetched from the brokerage.
func (c *Client) StockByID(ctx context.Context, id string) (*Stock, error) {
	if stock, ok := c.stockMap.Load(id); ok {
		return stock, nil
	}
	v, err := c.client.GetInstrument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not fetch instrument %q: %w", id, err)
	}
	return c.cacheStock(v), nil
}

// StockByURL is similar to StockByID, but takes an instrument url.
func (c *Client) StockByURL(ctx context.Context, instrumentURL string) (*Stock, error) {
	id := internal.InstrumentID(instrumentURL)
	if id == "" {
		return nil, fmt.Errorf("invalid instrument url %q: %w", instrumentURL, exchange.ErrAPI)
	}
	return c.StockByID(ctx, id)
}

// CurrencyByPairID returns the currency pair with given id, fetching it from
// the brokerage if it is unknown.
func (c *Client) CurrencyByPairID(ctx context.Context, id string) (*Currency, error) {
	if cur, ok := c.currencyMap.Load(id); ok {
		return cur, nil
	}
	v, err := c.client.GetCurrencyPair(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not fetch currency pair %q: %w", id, err)
	}
	return c.cacheCurrency(v), nil
}
