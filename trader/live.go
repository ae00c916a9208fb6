// Copyright (c) 2025 BVK Chaitanya

package trader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/bvk/tradinhood/ctxutil"
	"github.com/bvk/tradinhood/dataset"
	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/idgen"
	"github.com/bvk/tradinhood/kvutil"
	"github.com/bvk/tradinhood/robinhood"
	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"
)

// StateKeyspace holds the live trader states by run name.
const StateKeyspace = "/trader/state"

// Broker is the subset of the brokerage client used for live trading.
type Broker interface {
	Lookup(ctx context.Context, symbol string) (robinhood.Asset, error)
	BuyingPower(ctx context.Context) (decimal.Decimal, error)
	Quantity(ctx context.Context, asset robinhood.Asset, includeHeld bool) (decimal.Decimal, error)

	Buy(ctx context.Context, asset robinhood.Asset, req *robinhood.OrderRequest) (*robinhood.Order, error)
	Sell(ctx context.Context, asset robinhood.Asset, req *robinhood.OrderRequest) (*robinhood.Order, error)

	WaitForOrders(ctx context.Context, orders []*robinhood.Order, delay, timeout time.Duration, force bool) (bool, error)
}

var _ Broker = (*robinhood.Client)(nil)

// Live runs an algorithm against the brokerage in real time. Every step
// lasts for the configured resolution; orders that are not complete within a
// step are cancelled.
type Live struct {
	stepper

	opts LiveOptions

	broker Broker

	resolution time.Duration

	assets map[string]robinhood.Asset

	// refIDs generates the order reference ids. Sequence is continued from
	// the saved state when the run is restarted.
	refIDs *idgen.Generator

	orders []*robinhood.Order

	// last is the most recent successful step.
	last *gobs.StepRecord
}

func NewLive(broker Broker, symbols []string, opts *LiveOptions) (*Live, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required: %w", os.ErrInvalid)
	}
	if opts == nil {
		opts = new(LiveOptions)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	resolution, _ := dataset.Duration(opts.Resolution)

	l := &Live{
		stepper: stepper{
			run:      opts.Run,
			symbols:  symbols,
			recorder: opts.Recorder,
		},
		opts:       *opts,
		broker:     broker,
		resolution: resolution,
		assets:     make(map[string]robinhood.Asset),
		refIDs:     idgen.New(opts.Run, 0),
	}
	return l, nil
}

// Run executes the algorithm once per resolution interval till the
// configured stop time or till the context is cancelled. Step failures are
// logged and reported, but do not stop the trading.
func (l *Live) Run(ctx context.Context, algo Algorithm) error {
	if l.opts.Database != nil {
		state, err := LoadState(ctx, l.opts.Database, l.run)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("could not load previous trader state: %w", err)
		}
		if state != nil {
			l.refIDs = idgen.New(l.run, state.RefIDOffset)
			slog.Info("continuing from the previous trader state", "run", l.run, "ref-id-offset", state.RefIDOffset)
		}
	}

	if err := algo.Setup(ctx, l); err != nil {
		return fmt.Errorf("algorithm setup failed: %w", err)
	}
	l.notify(ctx, fmt.Sprintf("started %s with %s at %s resolution", l.run, strings.Join(l.symbols, ","), l.opts.Resolution))

	for ctx.Err() == nil {
		start := time.Now()
		if !l.opts.Until.IsZero() && start.After(l.opts.Until) {
			break
		}

		last, err := l.step(ctx, l, algo, start)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("could not complete the trading step (continuing)", "run", l.run, "err", err)
			l.notify(ctx, fmt.Sprintf("trading step failed: %v", err))
		} else {
			l.last = last
		}
		if err := l.saveState(ctx); err != nil {
			slog.Error("could not save trader state (ignored)", "run", l.run, "err", err)
		}

		wait := time.Until(start.Add(l.resolution))
		if wait <= 0 {
			slog.Warn("algorithm step took longer than the resolution", "run", l.run, "took", time.Since(start), "resolution", l.resolution)
			continue
		}
		if !l.opts.Until.IsZero() {
			wait = min(wait, time.Until(l.opts.Until)+time.Millisecond)
		}
		if err := ctxutil.Sleep(ctx, wait); err != nil {
			break
		}
	}

	// Cleanup may need to close positions even when the trading is cancelled.
	cctx := context.WithoutCancel(ctx)
	cerr := algo.CleanUp(cctx, l)
	if err := l.saveState(cctx); err != nil {
		slog.Error("could not save trader state after cleanup", "run", l.run, "err", err)
	}
	if cerr != nil {
		return fmt.Errorf("algorithm cleanup failed: %w", cerr)
	}
	l.notify(cctx, fmt.Sprintf("stopped %s", l.run))
	return context.Cause(ctx)
}

func (l *Live) notify(ctx context.Context, text string) {
	if l.opts.Messenger == nil {
		return
	}
	if err := l.opts.Messenger.SendMessage(ctx, time.Now(), text); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Warn("could not send notification (ignored)", "text", text, "err", err)
		}
	}
}

// saveState writes the current run state to the database.
func (l *Live) saveState(ctx context.Context) error {
	if l.opts.Database == nil {
		return nil
	}
	state := &gobs.TraderState{
		Run:        l.run,
		Algorithm:  l.opts.Algorithm,
		Resolution: l.opts.Resolution,
		Symbols:    l.Symbols(),
		LastStep:   l.last,

		RefIDOffset: l.refIDs.Offset(),
	}
	for _, o := range l.orders {
		state.Orders = append(state.Orders, o.Snapshot())
	}
	return kvutil.SetDB(ctx, l.opts.Database, path.Join(StateKeyspace, l.run), state)
}

// LoadState reads the last saved state of a live trader run.
func LoadState(ctx context.Context, db kv.Database, run string) (*gobs.TraderState, error) {
	return kvutil.GetDB[gobs.TraderState](ctx, db, path.Join(StateKeyspace, run))
}

// LoadStateFrom is like LoadState, but reads within a transaction or snapshot.
func LoadStateFrom(ctx context.Context, r kv.Reader, run string) (*gobs.TraderState, error) {
	return kvutil.Get[gobs.TraderState](ctx, r, path.Join(StateKeyspace, run))
}

func (l *Live) asset(ctx context.Context, symbol string) (robinhood.Asset, error) {
	if a, ok := l.assets[symbol]; ok {
		return a, nil
	}
	a, err := l.broker.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	l.assets[symbol] = a
	return a, nil
}

// Cash returns the buying power.
func (l *Live) Cash(ctx context.Context) (decimal.Decimal, error) {
	return l.broker.BuyingPower(ctx)
}

func (l *Live) PortfolioValue(ctx context.Context) (decimal.Decimal, error) {
	return PortfolioValue(ctx, l)
}

func (l *Live) Quantity(ctx context.Context, symbol string) (decimal.Decimal, error) {
	a, err := l.asset(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return l.broker.Quantity(ctx, a, false)
}

func (l *Live) SetQuantity(ctx context.Context, symbol string, amt decimal.Decimal) (bool, error) {
	return SetQuantity(ctx, l, symbol, amt)
}

func (l *Live) Price(ctx context.Context, symbol string) (decimal.Decimal, error) {
	a, err := l.asset(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return robinhood.Price(ctx, a)
}

func (l *Live) Buy(ctx context.Context, symbol string, amt decimal.Decimal) (bool, error) {
	return l.trade(ctx, exchange.Buy, symbol, amt)
}

func (l *Live) Sell(ctx context.Context, symbol string, amt decimal.Decimal) (bool, error) {
	return l.trade(ctx, exchange.Sell, symbol, amt)
}

// trade places a market order. When waiting is enabled, it blocks till the
// order is complete or it is cancelled at the end of a resolution interval,
// and returns true only if the order is filled.
func (l *Live) trade(ctx context.Context, side exchange.Side, symbol string, amt decimal.Decimal) (bool, error) {
	if err := checkTrade(l.symbols, symbol, amt); err != nil {
		return false, err
	}
	a, err := l.asset(ctx, symbol)
	if err != nil {
		return false, err
	}

	req := &robinhood.OrderRequest{
		Quantity: amt,
		RefID:    l.refIDs.NextID().String(),
	}
	// Used reference ids must survive a restart even when the step fails
	// or is cancelled after this point.
	if err := l.saveState(context.WithoutCancel(ctx)); err != nil {
		return false, fmt.Errorf("could not save the order reference id offset: %w", err)
	}
	var order *robinhood.Order
	if side == exchange.Buy {
		order, err = l.broker.Buy(ctx, a, req)
	} else {
		order, err = l.broker.Sell(ctx, a, req)
	}
	if err != nil {
		return false, fmt.Errorf("could not %s %s %s: %w", side, amt, symbol, err)
	}
	l.orders = append(l.orders, order)

	if l.opts.NoWait {
		l.notify(ctx, fmt.Sprintf("placed %s order for %s %s", side, amt, symbol))
		return true, nil
	}

	done, err := l.broker.WaitForOrders(ctx, []*robinhood.Order{order}, l.opts.PollDelay, l.resolution, true)
	if err != nil {
		return false, fmt.Errorf("could not wait for %s order of %s: %w", side, symbol, err)
	}
	if state := order.LastState(); !done || state != exchange.Filled {
		slog.Warn("order did not fill within a step", "order", order.ID(), "side", side, "symbol", symbol, "state", state)
		l.notify(ctx, fmt.Sprintf("%s order for %s %s was not filled (%s)", side, amt, symbol, state))
		return false, nil
	}
	l.notify(ctx, fmt.Sprintf("%s order for %s %s is filled at %s", side, amt, symbol, order.AveragePrice()))
	return true, nil
}

// History returns the most recent candles from the brokerage at the trading
// resolution.
func (l *Live) History(ctx context.Context, symbol string, steps int) ([]*gobs.Candle, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("history steps must be positive: %w", os.ErrInvalid)
	}
	a, err := l.asset(ctx, symbol)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.FromAsset(ctx, a, l.opts.Resolution)
	if err != nil {
		return nil, err
	}
	dates := ds.Dates()
	if len(dates) > steps {
		dates = dates[len(dates)-steps:]
	}
	var candles []*gobs.Candle
	for _, ts := range dates {
		if c, ok := ds.Get(ts, a.Code()); ok {
			candles = append(candles, c)
		}
	}
	return candles, nil
}
