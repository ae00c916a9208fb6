// Copyright (c) 2025 BVK Chaitanya

package algo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/trader"
	"github.com/shopspring/decimal"
)

// Crossover holds a fixed quantity of every symbol while the fast moving
// average of the close prices is above the slow moving average, and holds
// nothing otherwise.
type Crossover struct {
	Fast, Slow int

	Quantity decimal.Decimal

	// Liquidate sells everything at the end.
	Liquidate bool
}

func NewCrossover(p Params) (*Crossover, error) {
	fast, err := p.getInt("fast", 5)
	if err != nil {
		return nil, err
	}
	slow, err := p.getInt("slow", 20)
	if err != nil {
		return nil, err
	}
	qty, err := p.getDecimal("quantity", decimal.NewFromInt(1))
	if err != nil {
		return nil, err
	}
	if fast <= 0 || slow <= fast {
		return nil, fmt.Errorf("fast window must be positive and smaller than the slow window: %w", os.ErrInvalid)
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("quantity must be positive: %w", os.ErrInvalid)
	}
	return &Crossover{Fast: fast, Slow: slow, Quantity: qty, Liquidate: p["liquidate"] == "true"}, nil
}

func average(candles []*gobs.Candle) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range candles {
		sum = sum.Add(c.Close)
	}
	return sum.Div(decimal.NewFromInt(int64(len(candles))))
}

func (v *Crossover) Setup(ctx context.Context, t trader.Trader) error {
	return nil
}

func (v *Crossover) Loop(ctx context.Context, t trader.Trader, now time.Time) error {
	for _, s := range t.Symbols() {
		candles, err := t.History(ctx, s, v.Slow)
		if err != nil {
			if errors.Is(err, os.ErrInvalid) {
				// Not enough history yet.
				continue
			}
			return err
		}
		if len(candles) < v.Slow {
			continue
		}
		fast := average(candles[len(candles)-v.Fast:])
		slow := average(candles)

		target := decimal.Zero
		if fast.GreaterThan(slow) {
			target = v.Quantity
		}
		if _, err := t.SetQuantity(ctx, s, target); err != nil {
			return err
		}
	}
	return nil
}

func (v *Crossover) CleanUp(ctx context.Context, t trader.Trader) error {
	if !v.Liquidate {
		return nil
	}
	for _, s := range t.Symbols() {
		if _, err := t.SetQuantity(ctx, s, decimal.Zero); err != nil {
			return err
		}
	}
	return nil
}
