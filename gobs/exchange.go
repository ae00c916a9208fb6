// Copyright (c) 2023 BVK Chaitanya

package gobs

import (
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/shopspring/decimal"
)

// Candle is an OHLCV data point for a single asset.
type Candle struct {
	StartTime exchange.RemoteTime
	Duration  time.Duration

	Low  decimal.Decimal
	High decimal.Decimal

	Open  decimal.Decimal
	Close decimal.Decimal

	Volume decimal.Decimal
}

// Frame holds candles of multiple symbols for a single timestamp.
type Frame struct {
	Time    exchange.RemoteTime
	Candles map[string]*Candle
}

// Dataset is the persistent form of an OHLCV dataset.
type Dataset struct {
	Name       string
	Resolution string
	Symbols    []string
	Frames     []*Frame
}

// Order is a snapshot of a brokerage order.
type Order struct {
	ServerOrderID string
	RefID         string
	AssetKind     exchange.AssetKind
	Symbol        string

	Side        exchange.Side
	Type        exchange.OrderType
	TimeInForce exchange.TimeInForce
	State       exchange.OrderState

	CreateTime      exchange.RemoteTime
	LastTransaction exchange.RemoteTime

	Quantity           decimal.Decimal
	CumulativeQuantity decimal.Decimal
	Price              decimal.Decimal
	StopPrice          decimal.Decimal
	AveragePrice       decimal.Decimal
}
