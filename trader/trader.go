// Copyright (c) 2023 BVK Chaitanya

package trader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/shopspring/decimal"
)

// PortfolioValue returns cash plus the current value of owned quantities of
// all tracked symbols.
func PortfolioValue(ctx context.Context, t Trader) (decimal.Decimal, error) {
	value, err := t.Cash(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	for _, s := range t.Symbols() {
		q, err := t.Quantity(ctx, s)
		if err != nil {
			return decimal.Zero, err
		}
		if q.IsZero() {
			continue
		}
		p, err := t.Price(ctx, s)
		if err != nil {
			return decimal.Zero, err
		}
		value = value.Add(q.Mul(p))
	}
	return value, nil
}

// SetQuantity buys or sells the difference between the owned quantity and
// amt. Returns true when nothing needs to be traded.
func SetQuantity(ctx context.Context, t Trader, symbol string, amt decimal.Decimal) (bool, error) {
	if amt.IsNegative() {
		return false, fmt.Errorf("quantity cannot be negative: %w", os.ErrInvalid)
	}
	current, err := t.Quantity(ctx, symbol)
	if err != nil {
		return false, err
	}
	switch {
	case amt.GreaterThan(current):
		return t.Buy(ctx, symbol, amt.Sub(current))
	case amt.LessThan(current):
		return t.Sell(ctx, symbol, current.Sub(amt))
	}
	return true, nil
}

func checkTrade(symbols []string, symbol string, amt decimal.Decimal) error {
	if !slices.Contains(symbols, symbol) {
		return fmt.Errorf("symbol %q is not tracked: %w", symbol, exchange.ErrNotFound)
	}
	if !amt.IsPositive() {
		return fmt.Errorf("trade amount must be positive: %w", os.ErrInvalid)
	}
	return nil
}

// stepper keeps the step log shared by all trader implementations.
type stepper struct {
	run     string
	symbols []string

	recorder Recorder

	log []*gobs.StepRecord
}

func (s *stepper) Symbols() []string {
	return slices.Clone(s.symbols)
}

// Log returns all step records in the order they were taken.
func (s *stepper) Log() []*gobs.StepRecord {
	return slices.Clone(s.log)
}

func (s *stepper) snapshot(ctx context.Context, t Trader, now time.Time, phase gobs.StepPhase) (*gobs.StepRecord, error) {
	r := &gobs.StepRecord{
		Run:    s.run,
		Time:   exchange.RemoteTime{Time: now},
		Phase:  phase,
		Owned:  make(map[string]decimal.Decimal),
		Prices: make(map[string]decimal.Decimal),
	}
	cash, err := t.Cash(ctx)
	if err != nil {
		return nil, err
	}
	r.Cash = cash

	value := cash
	for _, sym := range s.symbols {
		q, err := t.Quantity(ctx, sym)
		if err != nil {
			return nil, err
		}
		p, err := t.Price(ctx, sym)
		if err != nil {
			return nil, err
		}
		r.Owned[sym], r.Prices[sym] = q, p
		value = value.Add(q.Mul(p))
	}
	r.PortfolioValue = value

	s.log = append(s.log, r)
	if s.recorder != nil {
		if err := s.recorder.AppendStep(ctx, r); err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Error("could not record step (ignored)", "run", s.run, "time", now, "err", err)
			}
		}
	}
	return r, nil
}

// step runs the algorithm for a single step and records the account state
// before and after.
func (s *stepper) step(ctx context.Context, t Trader, algo Algorithm, now time.Time) (*gobs.StepRecord, error) {
	if _, err := s.snapshot(ctx, t, now, gobs.StepStart); err != nil {
		return nil, fmt.Errorf("could not record step start: %w", err)
	}
	if err := algo.Loop(ctx, t, now); err != nil {
		return nil, fmt.Errorf("algorithm failed at %s: %w", now.Format(time.RFC3339), err)
	}
	end, err := s.snapshot(ctx, t, now, gobs.StepEnd)
	if err != nil {
		return nil, fmt.Errorf("could not record step end: %w", err)
	}
	return end, nil
}
