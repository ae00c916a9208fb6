// Copyright (c) 2025 BVK Chaitanya

package trader

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/idgen"
	"github.com/bvk/tradinhood/robinhood"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeAsset struct {
	code  string
	price decimal.Decimal
}

func (a *fakeAsset) Kind() exchange.AssetKind { return exchange.StockAsset }
func (a *fakeAsset) ID() string               { return "id-" + a.code }
func (a *fakeAsset) Code() string             { return a.code }
func (a *fakeAsset) Name() string             { return a.code }
func (a *fakeAsset) Tradable() bool           { return true }

func (a *fakeAsset) Quote(ctx context.Context) (*robinhood.Quote, error) {
	return &robinhood.Quote{Price: a.price, Bid: a.price, Ask: a.price, FetchedAt: time.Now()}, nil
}

func (a *fakeAsset) MarketOpen(ctx context.Context) (bool, error) {
	return true, nil
}

func (a *fakeAsset) History(ctx context.Context, bounds, interval, span string) ([]*gobs.Candle, error) {
	var candles []*gobs.Candle
	for i := 0; i < 5; i++ {
		ts := day0.Add(time.Duration(i) * 24 * time.Hour)
		candles = append(candles, &gobs.Candle{
			StartTime: exchange.RemoteTime{Time: ts},
			Duration:  24 * time.Hour,
			Close:     decimal.NewFromInt(int64(i)),
		})
	}
	return candles, nil
}

type fakeBroker struct {
	assets map[string]*fakeAsset

	lookups int
	buys    []*robinhood.OrderRequest
	owned   decimal.Decimal

	waitDelay, waitTimeout time.Duration
	waitForce              bool
}

func (f *fakeBroker) Lookup(ctx context.Context, symbol string) (robinhood.Asset, error) {
	f.lookups++
	a, ok := f.assets[symbol]
	if !ok {
		return nil, exchange.ErrNotFound
	}
	return a, nil
}

func (f *fakeBroker) BuyingPower(ctx context.Context) (decimal.Decimal, error) {
	return decimal.NewFromInt(500), nil
}

func (f *fakeBroker) Quantity(ctx context.Context, asset robinhood.Asset, includeHeld bool) (decimal.Decimal, error) {
	return f.owned, nil
}

func (f *fakeBroker) Buy(ctx context.Context, asset robinhood.Asset, req *robinhood.OrderRequest) (*robinhood.Order, error) {
	f.buys = append(f.buys, req)
	return new(robinhood.Order), nil
}

func (f *fakeBroker) Sell(ctx context.Context, asset robinhood.Asset, req *robinhood.OrderRequest) (*robinhood.Order, error) {
	return nil, exchange.ErrNotTradable
}

func (f *fakeBroker) WaitForOrders(ctx context.Context, orders []*robinhood.Order, delay, timeout time.Duration, force bool) (bool, error) {
	f.waitDelay, f.waitTimeout, f.waitForce = delay, timeout, force
	return false, nil
}

type memMessenger struct {
	mu       sync.Mutex
	messages []string
}

func (m *memMessenger) SendMessage(ctx context.Context, at time.Time, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, text)
	return nil
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		assets: map[string]*fakeAsset{
			"AAPL": {code: "AAPL", price: decimal.NewFromInt(150)},
		},
		owned: decimal.NewFromInt(2),
	}
}

func TestLiveStep(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	broker := newFakeBroker()
	messenger := new(memMessenger)
	rec := new(memRecorder)

	live, err := NewLive(broker, []string{"AAPL"}, &LiveOptions{
		Run:       "test-run",
		Algorithm: "test",
		Until:     time.Now().Add(50 * time.Millisecond),
		Recorder:  rec,
		Messenger: messenger,
		Database:  db,
	})
	require.NoError(t, err)

	loops := 0
	algo := &funcAlgo{
		loop: func(ctx context.Context, tr Trader, now time.Time) error {
			loops++

			v, err := tr.PortfolioValue(ctx)
			require.NoError(t, err)
			require.Equal(t, "800", v.String())

			ok, err := tr.Buy(ctx, "AAPL", decimal.NewFromInt(3))
			require.NoError(t, err)
			require.False(t, ok)

			_, err = tr.Sell(ctx, "AAPL", decimal.NewFromInt(1))
			require.ErrorIs(t, err, exchange.ErrNotTradable)

			hist, err := tr.History(ctx, "AAPL", 3)
			require.NoError(t, err)
			require.Len(t, hist, 3)
			require.Equal(t, "4", hist[2].Close.String())
			return nil
		},
	}

	start := time.Now()
	require.NoError(t, live.Run(ctx, algo))
	require.Less(t, time.Since(start), 5*time.Second)

	require.Equal(t, 1, loops)
	require.Equal(t, 1, algo.setup)
	require.Equal(t, 1, algo.cleanup)
	require.Equal(t, 1, broker.lookups)

	require.Len(t, broker.buys, 1)
	require.Equal(t, "3", broker.buys[0].Quantity.String())
	require.Equal(t, 5*time.Second, broker.waitDelay)
	require.Equal(t, 24*time.Hour, broker.waitTimeout)
	require.True(t, broker.waitForce)

	require.Len(t, rec.records, 2)
	require.Equal(t, "500", rec.records[0].Cash.String())
	require.Equal(t, "150", rec.records[0].Prices["AAPL"].String())

	require.NotEmpty(t, messenger.messages)
	require.True(t, strings.HasPrefix(messenger.messages[0], "started test-run"))
	require.Contains(t, strings.Join(messenger.messages, "\n"), "was not filled")
	require.Equal(t, "stopped test-run", messenger.messages[len(messenger.messages)-1])

	state, err := LoadState(ctx, db, "test-run")
	require.NoError(t, err)
	require.Equal(t, "test", state.Algorithm)
	require.Equal(t, "1d", state.Resolution)
	require.Len(t, state.Orders, 1)
	require.Equal(t, gobs.StepEnd, state.LastStep.Phase)
	require.Equal(t, "800", state.LastStep.PortfolioValue.String())
	require.Equal(t, uint64(1), state.RefIDOffset)
	require.Equal(t, idgen.New("test-run", 0).At(0).String(), broker.buys[0].RefID)

	// Restarted run continues the reference id sequence.
	live, err = NewLive(broker, []string{"AAPL"}, &LiveOptions{
		Run:      "test-run",
		NoWait:   true,
		Until:    time.Now().Add(50 * time.Millisecond),
		Database: db,
	})
	require.NoError(t, err)
	algo.loop = func(ctx context.Context, tr Trader, now time.Time) error {
		_, err := tr.Buy(ctx, "AAPL", decimal.NewFromInt(1))
		return err
	}
	require.NoError(t, live.Run(ctx, algo))
	require.Len(t, broker.buys, 2)
	require.Equal(t, idgen.New("test-run", 0).At(1).String(), broker.buys[1].RefID)
}

func TestLiveRefIDsSurviveFailedStepsAndCleanUp(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	broker := newFakeBroker()

	newLive := func() *Live {
		live, err := NewLive(broker, []string{"AAPL"}, &LiveOptions{
			Run:      "refs",
			NoWait:   true,
			Until:    time.Now().Add(50 * time.Millisecond),
			Database: db,
		})
		require.NoError(t, err)
		return live
	}

	algo := &funcAlgo{
		loop: func(ctx context.Context, tr Trader, now time.Time) error {
			if _, err := tr.Buy(ctx, "AAPL", decimal.NewFromInt(1)); err != nil {
				return err
			}
			return exchange.ErrAPI
		},
		clean: func(ctx context.Context, tr Trader) error {
			_, err := tr.Buy(ctx, "AAPL", decimal.NewFromInt(2))
			return err
		},
	}
	require.NoError(t, newLive().Run(ctx, algo))
	require.Len(t, broker.buys, 2)

	state, err := LoadState(ctx, db, "refs")
	require.NoError(t, err)
	require.Equal(t, uint64(2), state.RefIDOffset)
	require.Len(t, state.Orders, 2)
	require.Nil(t, state.LastStep)

	// Restarted run never reuses the ids sent from the failed step or the
	// cleanup.
	algo.loop = func(ctx context.Context, tr Trader, now time.Time) error {
		_, err := tr.Buy(ctx, "AAPL", decimal.NewFromInt(1))
		return err
	}
	algo.clean = nil
	require.NoError(t, newLive().Run(ctx, algo))
	require.Len(t, broker.buys, 3)
	ids := idgen.New("refs", 0)
	require.Equal(t, ids.At(0).String(), broker.buys[0].RefID)
	require.Equal(t, ids.At(1).String(), broker.buys[1].RefID)
	require.Equal(t, ids.At(2).String(), broker.buys[2].RefID)

	state, err = LoadState(ctx, db, "refs")
	require.NoError(t, err)
	require.Equal(t, uint64(3), state.RefIDOffset)
	require.NotNil(t, state.LastStep)
}

func TestLiveCancel(t *testing.T) {
	broker := newFakeBroker()

	live, err := NewLive(broker, []string{"AAPL"}, &LiveOptions{NoWait: true, Resolution: "1w"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	algo := &funcAlgo{
		loop: func(ctx context.Context, tr Trader, now time.Time) error {
			ok, err := tr.Buy(ctx, "AAPL", decimal.NewFromInt(1))
			require.NoError(t, err)
			require.True(t, ok)
			cancel()
			return nil
		},
	}
	require.ErrorIs(t, live.Run(ctx, algo), context.Canceled)
	require.Equal(t, 1, algo.cleanup)
	require.Len(t, broker.buys, 1)
	require.Zero(t, broker.waitTimeout)
}

func TestLiveOptions(t *testing.T) {
	_, err := NewLive(newFakeBroker(), []string{"AAPL"}, &LiveOptions{Resolution: "2d"})
	require.Error(t, err)
	_, err = NewLive(newFakeBroker(), nil, nil)
	require.Error(t, err)
}

type failMessenger struct{}

func (failMessenger) SendMessage(ctx context.Context, at time.Time, text string) error {
	return exchange.ErrAPI
}

func TestMessengers(t *testing.T) {
	a, b := new(memMessenger), new(memMessenger)
	ms := Messengers{a, failMessenger{}, b}
	err := ms.SendMessage(context.Background(), time.Now(), "hello")
	require.ErrorIs(t, err, exchange.ErrAPI)
	require.Equal(t, []string{"hello"}, a.messages)
	require.Equal(t, []string{"hello"}, b.messages)
}
