// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/robinhood/internal"
	"github.com/shopspring/decimal"
)

// Order is a stock or a currency order. Order state is never cached; every
// call to State fetches the order from the brokerage. Other fields reflect
// the order as of the last fetch.
type Order struct {
	client *Client

	id    string
	refID string
	kind  exchange.AssetKind

	// asset is nil when the order's instrument was not resolved. assetRef
	// holds the instrument url or the currency pair id.
	asset    Asset
	assetRef string

	side        exchange.Side
	timeInForce exchange.TimeInForce
	orderType   exchange.OrderType
	createdAt   time.Time

	quantity decimal.Decimal
	price    decimal.Decimal

	mu sync.Mutex

	stopPrice          decimal.Decimal
	averagePrice       decimal.Decimal
	cumulativeQuantity decimal.Decimal
	lastTransactionAt  time.Time
	extendedHours      bool
	cancelURL          string
	lastState          exchange.OrderState
}

// newOrder creates an order object from the brokerage response. Order's asset
// is resolved from the client caches and, when lookup is true, from the
// brokerage if it is unknown.
func (c *Client) newOrder(ctx context.Context, v *internal.Order, lookup bool) (*Order, error) {
	o := &Order{
		client:      c,
		id:          v.ID,
		refID:       v.RefID,
		side:        exchange.Side(v.Side),
		timeInForce: exchange.TimeInForce(v.TimeInForce),
		orderType:   exchange.JoinOrderType(v.Type, exchange.Trigger(v.Trigger)),
		createdAt:   v.CreatedAt.Time,
		quantity:    v.Quantity,
		price:       v.Price,
	}
	o.update(v)

	if v.CurrencyPairID != "" {
		o.kind = exchange.CurrencyAsset
		o.assetRef = v.CurrencyPairID
		cur, err := c.CurrencyByPairID(ctx, v.CurrencyPairID)
		if err != nil {
			return nil, err
		}
		o.asset = cur
		return o, nil
	}

	o.kind = exchange.StockAsset
	o.assetRef = v.Instrument
	id := internal.InstrumentID(v.Instrument)
	if stock, ok := c.CachedStock(id); ok {
		o.asset = stock
		return o, nil
	}
	if lookup {
		stock, err := c.StockByID(ctx, id)
		if err != nil {
			return nil, err
		}
		o.asset = stock
	}
	return o, nil
}

func (o *Order) update(v *internal.Order) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopPrice = v.StopPrice
	o.averagePrice = v.AveragePrice
	o.cumulativeQuantity = v.CumulativeQuantity
	o.lastTransactionAt = v.LastTransactionAt.Time
	o.extendedHours = v.ExtendedHours
	o.lastState = exchange.OrderState(v.State)
	if link := v.CancelLink(); link != "" {
		o.cancelURL = link
	}
}

func (o *Order) String() string {
	symbol := o.assetRef
	if o.asset != nil {
		symbol = o.asset.Code()
	}
	return fmt.Sprintf("<Order %s %s %s x %s @ %s>", o.id, o.side, symbol, o.quantity, o.price)
}

func (o *Order) ID() string {
	return o.id
}

func (o *Order) RefID() string {
	return o.refID
}

func (o *Order) Kind() exchange.AssetKind {
	return o.kind
}

// Asset returns the traded asset, which is nil when the order was loaded
// without asset lookup and the instrument was not in the cache.
func (o *Order) Asset() Asset {
	return o.asset
}

// AssetRef returns the instrument url for stock orders and the currency pair
// id for currency orders.
func (o *Order) AssetRef() string {
	return o.assetRef
}

func (o *Order) Side() exchange.Side {
	return o.side
}

func (o *Order) TimeInForce() exchange.TimeInForce {
	return o.timeInForce
}

func (o *Order) Type() exchange.OrderType {
	return o.orderType
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) Quantity() decimal.Decimal {
	return o.quantity
}

// Price returns the requested price.
func (o *Order) Price() decimal.Decimal {
	return o.price
}

func (o *Order) StopPrice() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopPrice
}

// AveragePrice returns the average execution price as of the last fetch.
func (o *Order) AveragePrice() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.averagePrice
}

// CumulativeQuantity returns the executed quantity as of the last fetch.
func (o *Order) CumulativeQuantity() decimal.Decimal {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cumulativeQuantity
}

func (o *Order) LastTransactionAt() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastTransactionAt
}

func (o *Order) ExtendedHours() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.extendedHours
}

// LastState returns the state observed by the last fetch without contacting
// the brokerage. It must not be used to decide order completion.
func (o *Order) LastState() exchange.OrderState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastState
}

func (o *Order) fetch(ctx context.Context) (*internal.Order, error) {
	if o.kind == exchange.CurrencyAsset {
		return o.client.client.GetCryptoOrder(ctx, o.id)
	}
	return o.client.client.GetStockOrder(ctx, o.id)
}

// Refresh re-fetches the order details from the brokerage.
func (o *Order) Refresh(ctx context.Context) error {
	v, err := o.fetch(ctx)
	if err != nil {
		return fmt.Errorf("could not refresh order %s: %w", o.id, err)
	}
	o.update(v)
	return nil
}

// State fetches the order from the brokerage and returns its current state.
func (o *Order) State(ctx context.Context) (exchange.OrderState, error) {
	v, err := o.fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("could not fetch order %s: %w", o.id, err)
	}
	o.update(v)

	state := exchange.OrderState(v.State)
	update := &OrderUpdate{
		OrderID:   o.id,
		AssetKind: o.kind,
		State:     state,
		FetchedAt: time.Now(),
	}
	if o.asset != nil {
		update.Symbol = o.asset.Code()
	}
	o.client.orderUpdates.Send(update)
	return state, nil
}

// Cancel requests the brokerage to cancel the order.
func (o *Order) Cancel(ctx context.Context) error {
	o.mu.Lock()
	cancelURL := o.cancelURL
	o.mu.Unlock()

	if cancelURL == "" {
		if o.kind == exchange.CurrencyAsset {
			cancelURL = o.client.client.NummusPath("orders", o.id, "cancel").String()
		} else {
			cancelURL = o.client.client.APIPath("orders", o.id, "cancel").String()
		}
	}
	if err := o.client.client.CancelOrder(ctx, cancelURL); err != nil {
		return fmt.Errorf("could not cancel order %s: %w", o.id, err)
	}
	return nil
}

// Snapshot returns the order fields as of the last fetch.
func (o *Order) Snapshot() *gobs.Order {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := &gobs.Order{
		ServerOrderID:      o.id,
		RefID:              o.refID,
		AssetKind:          o.kind,
		Side:               o.side,
		Type:               o.orderType,
		TimeInForce:        o.timeInForce,
		State:              o.lastState,
		CreateTime:         exchange.RemoteTime{Time: o.createdAt},
		LastTransaction:    exchange.RemoteTime{Time: o.lastTransactionAt},
		Quantity:           o.quantity,
		CumulativeQuantity: o.cumulativeQuantity,
		Price:              o.price,
		StopPrice:          o.stopPrice,
		AveragePrice:       o.averagePrice,
	}
	if o.asset != nil {
		v.Symbol = o.asset.Code()
	}
	return v
}
