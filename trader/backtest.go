// Copyright (c) 2025 BVK Chaitanya

package trader

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"
	"time"

	"github.com/bvk/tradinhood/dataset"
	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/shopspring/decimal"
)

// Backtester replays a dataset through an algorithm. Prices are drawn
// uniformly between the open and the close of the current step, so repeated
// runs with the same seed produce the same results.
type Backtester struct {
	stepper

	opts BacktestOptions

	ds    *dataset.Dataset
	steps []time.Time

	// idx is the current step index.
	idx int

	cash  decimal.Decimal
	owned map[string]decimal.Decimal

	rng *rand.Rand
}

func NewBacktester(ds *dataset.Dataset, symbols []string, opts *BacktestOptions) (*Backtester, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required: %w", os.ErrInvalid)
	}
	if opts == nil {
		opts = new(BacktestOptions)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	available := ds.Symbols()
	for _, s := range symbols {
		if !slices.Contains(available, s) {
			return nil, fmt.Errorf("symbol %q is not in the dataset: %w", s, exchange.ErrNotFound)
		}
	}

	b := &Backtester{
		stepper: stepper{
			run:      opts.Run,
			symbols:  symbols,
			recorder: opts.Recorder,
		},
		opts:  *opts,
		ds:    ds,
		steps: ds.Dates(),
		idx:   opts.StartIndex,
		cash:  opts.Cash,
		owned: make(map[string]decimal.Decimal),
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed)),
	}
	return b, nil
}

// Run executes the algorithm over all dataset steps starting at the start
// index. Run can only be called once.
func (b *Backtester) Run(ctx context.Context, algo Algorithm) error {
	if err := algo.Setup(ctx, b); err != nil {
		return fmt.Errorf("algorithm setup failed: %w", err)
	}
	for i := b.opts.StartIndex; i < len(b.steps); i++ {
		if err := context.Cause(ctx); err != nil {
			return err
		}
		b.idx = i
		if _, err := b.step(ctx, b, algo, b.steps[i]); err != nil {
			return err
		}
	}
	if err := algo.CleanUp(ctx, b); err != nil {
		return fmt.Errorf("algorithm cleanup failed: %w", err)
	}

	if n := len(b.log); n > 0 {
		first, last := b.log[0], b.log[n-1]
		slog.Info("backtest completed", "run", b.run, "steps", len(b.steps)-b.opts.StartIndex,
			"start-value", first.PortfolioValue.StringFixed(2), "end-value", last.PortfolioValue.StringFixed(2))
	}
	return nil
}

func (b *Backtester) Cash(ctx context.Context) (decimal.Decimal, error) {
	return b.cash, nil
}

func (b *Backtester) PortfolioValue(ctx context.Context) (decimal.Decimal, error) {
	return PortfolioValue(ctx, b)
}

func (b *Backtester) Quantity(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return b.owned[symbol], nil
}

func (b *Backtester) SetQuantity(ctx context.Context, symbol string, amt decimal.Decimal) (bool, error) {
	return SetQuantity(ctx, b, symbol, amt)
}

func (b *Backtester) current(symbol string) (*gobs.Candle, error) {
	if b.idx >= len(b.steps) {
		return nil, fmt.Errorf("backtest has no more steps: %w", os.ErrInvalid)
	}
	// Symbols can have gaps (ex: stocks on weekends in a dataset merged with
	// currencies), so the most recent candle is used.
	for i := b.idx; i >= 0; i-- {
		if c, ok := b.ds.Get(b.steps[i], symbol); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no %s data at or before %s: %w", symbol, b.steps[b.idx].Format(time.RFC3339), exchange.ErrNotFound)
}

// Price returns a random price between the open and the close prices of the
// current step's candle.
func (b *Backtester) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	c, err := b.current(symbol)
	if err != nil {
		return decimal.Zero, err
	}
	r := decimal.NewFromFloat(b.rng.Float64())
	return c.Open.Add(c.Close.Sub(c.Open).Mul(r)), nil
}

// Buy succeeds only if the cost is within the available cash.
func (b *Backtester) Buy(ctx context.Context, symbol string, amt decimal.Decimal) (bool, error) {
	if err := checkTrade(b.symbols, symbol, amt); err != nil {
		return false, err
	}
	price, err := b.Price(ctx, symbol)
	if err != nil {
		return false, err
	}
	cost := price.Mul(amt)
	if cost.GreaterThan(b.cash) {
		return false, nil
	}
	b.cash = b.cash.Sub(cost)
	b.owned[symbol] = b.owned[symbol].Add(amt)
	return true, nil
}

// Sell succeeds only if the amount is owned.
func (b *Backtester) Sell(ctx context.Context, symbol string, amt decimal.Decimal) (bool, error) {
	if err := checkTrade(b.symbols, symbol, amt); err != nil {
		return false, err
	}
	price, err := b.Price(ctx, symbol)
	if err != nil {
		return false, err
	}
	if amt.GreaterThan(b.owned[symbol]) {
		return false, nil
	}
	b.cash = b.cash.Add(price.Mul(amt))
	b.owned[symbol] = b.owned[symbol].Sub(amt)
	return true, nil
}

// History returns the candles of the steps preceding the current step. The
// current step index must be larger than the number of steps requested.
// Steps without data for the symbol are skipped.
func (b *Backtester) History(ctx context.Context, symbol string, steps int) ([]*gobs.Candle, error) {
	if steps <= 0 || b.idx <= steps {
		return nil, fmt.Errorf("cannot fetch %d history steps at step %d: %w", steps, b.idx, os.ErrInvalid)
	}
	var candles []*gobs.Candle
	for _, ts := range b.steps[b.idx-steps : b.idx] {
		if c, ok := b.ds.Get(ts, symbol); ok {
			candles = append(candles, c)
		}
	}
	return candles, nil
}
