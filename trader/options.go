// Copyright (c) 2023 BVK Chaitanya

package trader

import (
	"fmt"
	"time"

	"github.com/bvk/tradinhood/dataset"
	"github.com/bvkgo/kv"
	"github.com/shopspring/decimal"
)

type BacktestOptions struct {
	// Run names the backtest in the step records.
	Run string

	// Cash is the initial cash. Default is 10000.
	Cash decimal.Decimal

	// StartIndex is the first dataset step passed to the algorithm. Earlier
	// steps are only available through the History method.
	StartIndex int

	// Seed initializes the random source for the prices.
	Seed uint64

	Recorder Recorder
}

func (v *BacktestOptions) setDefaults() {
	if v.Run == "" {
		v.Run = "backtest"
	}
	if v.Cash.IsZero() {
		v.Cash = decimal.NewFromInt(10000)
	}
}

func (v *BacktestOptions) Check() error {
	if v.Cash.IsNegative() {
		return fmt.Errorf("initial cash cannot be negative")
	}
	if v.StartIndex < 0 {
		return fmt.Errorf("start index cannot be negative")
	}
	return nil
}

type LiveOptions struct {
	// Run names the live session in the step records and the saved state.
	Run string

	// Algorithm is the algorithm name saved in the trader state.
	Algorithm string

	// Resolution is the trading step. Default is 1d.
	Resolution string

	// Until when non-zero stops the trading at the given time.
	Until time.Time

	// NoWait when true, will NOT wait for the orders to complete. Otherwise,
	// orders are polled every PollDelay and are cancelled when they are not
	// complete within a step.
	NoWait bool

	// PollDelay is the order state polling interval. Default is 5s.
	PollDelay time.Duration

	Recorder  Recorder
	Messenger Messenger

	// Database when non-nil, saves the trader state at the end of every step.
	Database kv.Database
}

func (v *LiveOptions) setDefaults() {
	if v.Run == "" {
		v.Run = "live"
	}
	if v.Resolution == "" {
		v.Resolution = "1d"
	}
	if v.PollDelay == 0 {
		v.PollDelay = 5 * time.Second
	}
}

func (v *LiveOptions) Check() error {
	if _, err := dataset.Duration(v.Resolution); err != nil {
		return err
	}
	if v.PollDelay < 0 {
		return fmt.Errorf("poll delay cannot be negative")
	}
	return nil
}
