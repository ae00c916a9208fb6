// Copyright (c) 2025 BVK Chaitanya

package exchange

import (
	"fmt"
	"os"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

func (v Side) Check() error {
	if v != Buy && v != Sell {
		return fmt.Errorf("side %q must be buy or sell: %w", v, os.ErrInvalid)
	}
	return nil
}

// TimeInForce determines when an unfilled order is cancelled automatically.
type TimeInForce string

const (
	GoodTillCancelled TimeInForce = "gtc"
	GoodForDay        TimeInForce = "gfd"
	ImmediateOrCancel TimeInForce = "ioc"
	OnOpen            TimeInForce = "opg"
)

func (v TimeInForce) Check() error {
	switch v {
	case GoodTillCancelled, GoodForDay, ImmediateOrCancel, OnOpen:
		return nil
	}
	return fmt.Errorf("time-in-force %q must be one of gtc, gfd, ioc or opg: %w", v, os.ErrInvalid)
}

// OrderType is the user facing order type. Brokerage splits it into an api
// order type and a trigger; see SplitOrderType.
type OrderType string

const (
	Market    OrderType = "market"
	Limit     OrderType = "limit"
	StopLoss  OrderType = "stoploss"
	StopLimit OrderType = "stoplimit"
)

type Trigger string

const (
	Immediate Trigger = "immediate"
	Stop      Trigger = "stop"
)

// SplitOrderType returns the api order type and trigger for an order type.
func SplitOrderType(v OrderType) (string, Trigger, error) {
	switch v {
	case Market:
		return "market", Immediate, nil
	case Limit:
		return "limit", Immediate, nil
	case StopLoss:
		return "market", Stop, nil
	case StopLimit:
		return "limit", Stop, nil
	}
	return "", "", fmt.Errorf("order type %q is not supported: %w", v, os.ErrInvalid)
}

// JoinOrderType is the inverse of SplitOrderType.
func JoinOrderType(apiType string, trigger Trigger) OrderType {
	stop := trigger == Stop
	switch {
	case apiType == "market" && stop:
		return StopLoss
	case apiType == "limit" && stop:
		return StopLimit
	case apiType == "limit":
		return Limit
	}
	return Market
}

// OrderState is the server side order state. Values other than the constants
// below (like unconfirmed or partially_filled) are possible and are treated
// as incomplete states.
type OrderState string

const (
	Queued    OrderState = "queued"
	Confirmed OrderState = "confirmed"
	Filled    OrderState = "filled"
	Cancelled OrderState = "cancelled"
)

// IsTerminal returns true if no further state transitions can happen.
func (v OrderState) IsTerminal() bool {
	return v == Filled || v == Cancelled
}

type AssetKind string

const (
	StockAsset    AssetKind = "stock"
	CurrencyAsset AssetKind = "currency"
)
