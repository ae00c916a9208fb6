// Copyright (c) 2025 BVK Chaitanya

// Package pnl pairs filled orders into closed trades and reports their
// realized profit or loss.
package pnl

import (
	"context"
	"fmt"
	"slices"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/robinhood"
	"github.com/bvk/tradinhood/timerange"
	"github.com/shopspring/decimal"
)

// Trade is a buy order closed by a sell order of the same asset and the same
// filled quantity.
type Trade struct {
	Open  *gobs.Order
	Close *gobs.Order

	AssetKind exchange.AssetKind
	Symbol    string

	OpenPrice  decimal.Decimal
	ClosePrice decimal.Decimal

	OpenCost  decimal.Decimal
	CloseCost decimal.Decimal
}

func (t *Trade) ProfitLoss() decimal.Decimal {
	return t.CloseCost.Sub(t.OpenCost)
}

func sameAsset(a, b *gobs.Order) bool {
	return a.AssetKind == b.AssetKind && a.Symbol == b.Symbol
}

// Pair matches sell orders with older buy orders. Orders must be filled and
// sorted newest first. Each sell is paired with the first buy that follows
// it in the list with the same asset and the same cumulative quantity. Sells
// without a matching buy are skipped.
func Pair(orders []*gobs.Order) []*Trade {
	pool := slices.Clone(orders)

	var trades []*Trade
	for len(pool) > 0 {
		i := slices.IndexFunc(pool, func(o *gobs.Order) bool {
			return o.Side == exchange.Sell
		})
		if i < 0 {
			break
		}
		closeOrder := pool[i]

		j := slices.IndexFunc(pool[i+1:], func(o *gobs.Order) bool {
			return o.Side == exchange.Buy && sameAsset(o, closeOrder) && o.CumulativeQuantity.Equal(closeOrder.CumulativeQuantity)
		})
		if j >= 0 {
			openOrder := pool[i+1+j]
			trades = append(trades, &Trade{
				Open:       openOrder,
				Close:      closeOrder,
				AssetKind:  openOrder.AssetKind,
				Symbol:     openOrder.Symbol,
				OpenPrice:  openOrder.AveragePrice,
				ClosePrice: closeOrder.AveragePrice,
				OpenCost:   openOrder.CumulativeQuantity.Mul(openOrder.AveragePrice),
				CloseCost:  closeOrder.CumulativeQuantity.Mul(closeOrder.AveragePrice),
			})
			pool = slices.Delete(pool, i+1+j, i+2+j)
		}
		pool = slices.Delete(pool, i, i+1)
	}
	return trades
}

// Total returns the sum of profit/loss of all trades.
func Total(trades []*Trade) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range trades {
		sum = sum.Add(t.ProfitLoss())
	}
	return sum
}

// Closed returns the trades closed within the time range.
func Closed(trades []*Trade, r *timerange.Range) []*Trade {
	return slices.DeleteFunc(slices.Clone(trades), func(t *Trade) bool {
		return !r.InRange(t.Close.CreateTime.Time)
	})
}

// FromClient queries the filled order history and pairs stock and currency
// orders separately.
func FromClient(ctx context.Context, c *robinhood.Client, pages int) ([]*Trade, error) {
	orders, err := c.QueryOrders(ctx, &robinhood.QueryOptions{
		Pages: pages,
		State: exchange.Filled,
	})
	if err != nil {
		return nil, fmt.Errorf("could not query filled orders: %w", err)
	}

	var stocks, currencies []*gobs.Order
	for _, o := range orders {
		if o.Kind() == exchange.CurrencyAsset {
			currencies = append(currencies, o.Snapshot())
		} else {
			stocks = append(stocks, o.Snapshot())
		}
	}
	return append(Pair(stocks), Pair(currencies)...), nil
}
