// Copyright (c) 2025 BVK Chaitanya

package trader

import (
	"context"
	"errors"
	"time"

	"github.com/bvk/tradinhood/gobs"
	"github.com/shopspring/decimal"
)

// Trader is the view of an account given to the algorithms. Backtesting and
// live trading implement the same interface, so an algorithm can be moved
// from one to the other without changes.
type Trader interface {
	// Symbols returns the symbols tracked by the trader.
	Symbols() []string

	// Cash returns the amount available for buys.
	Cash(ctx context.Context) (decimal.Decimal, error)

	// PortfolioValue returns cash plus the value of owned tracked symbols.
	PortfolioValue(ctx context.Context) (decimal.Decimal, error)

	Quantity(ctx context.Context, symbol string) (decimal.Decimal, error)

	// SetQuantity buys or sells the difference to own exactly amt units.
	SetQuantity(ctx context.Context, symbol string, amt decimal.Decimal) (bool, error)

	Price(ctx context.Context, symbol string) (decimal.Decimal, error)

	// Buy and Sell return false when the trade could not be completed without
	// an error, ex: when cash is insufficient.
	Buy(ctx context.Context, symbol string, amt decimal.Decimal) (bool, error)
	Sell(ctx context.Context, symbol string, amt decimal.Decimal) (bool, error)

	// History returns the candles of the most recent steps before the
	// current step in ascending time order.
	History(ctx context.Context, symbol string, steps int) ([]*gobs.Candle, error)
}

// Algorithm is a trading strategy driven by a Trader.
type Algorithm interface {
	Setup(ctx context.Context, t Trader) error

	// Loop is invoked once per step with the step time.
	Loop(ctx context.Context, t Trader, now time.Time) error

	CleanUp(ctx context.Context, t Trader) error
}

// Recorder persists step records.
type Recorder interface {
	AppendStep(ctx context.Context, r *gobs.StepRecord) error
}

// Messenger delivers notifications about live trading events to the user.
type Messenger interface {
	SendMessage(ctx context.Context, at time.Time, text string) error
}

// Messengers sends every notification to all messengers.
type Messengers []Messenger

func (ms Messengers) SendMessage(ctx context.Context, at time.Time, text string) error {
	var errs []error
	for _, m := range ms {
		if err := m.SendMessage(ctx, at, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
