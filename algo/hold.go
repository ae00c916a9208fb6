// Copyright (c) 2025 BVK Chaitanya

package algo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bvk/tradinhood/trader"
	"github.com/shopspring/decimal"
)

// BuyAndHold splits the cash equally among all symbols at the first step
// and holds the assets till the end.
type BuyAndHold struct {
	// Precision is the number of decimal places in the bought quantities.
	Precision int32

	bought bool
}

func NewBuyAndHold(p Params) (*BuyAndHold, error) {
	n, err := p.getInt("precision", 0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("precision cannot be negative: %w", os.ErrInvalid)
	}
	return &BuyAndHold{Precision: int32(n)}, nil
}

func (v *BuyAndHold) Setup(ctx context.Context, t trader.Trader) error {
	return nil
}

func (v *BuyAndHold) Loop(ctx context.Context, t trader.Trader, now time.Time) error {
	if v.bought {
		return nil
	}
	v.bought = true

	cash, err := t.Cash(ctx)
	if err != nil {
		return err
	}
	symbols := t.Symbols()
	share := cash.Div(decimal.NewFromInt(int64(len(symbols))))
	for _, s := range symbols {
		price, err := t.Price(ctx, s)
		if err != nil {
			return err
		}
		if !price.IsPositive() {
			continue
		}
		// Leave some room for the price movements between the quote and the
		// trade.
		amt := share.Mul(decimal.RequireFromString("0.98")).Div(price).Truncate(v.Precision)
		if !amt.IsPositive() {
			slog.Warn("cash is not enough to buy the symbol", "symbol", s, "price", price, "cash", share)
			continue
		}
		ok, err := t.Buy(ctx, s, amt)
		if err != nil {
			return err
		}
		slog.Info("buy and hold", "symbol", s, "amount", amt, "ok", ok)
	}
	return nil
}

func (v *BuyAndHold) CleanUp(ctx context.Context, t trader.Trader) error {
	return nil
}
