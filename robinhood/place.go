// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/robinhood/internal"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderRequest struct {
	Quantity decimal.Decimal

	// Type defaults to a market order.
	Type exchange.OrderType

	// Price defaults to the current asset price.
	Price decimal.Decimal

	// StopPrice is required for stop-loss and stop-limit orders and must be
	// zero for other orders.
	StopPrice decimal.Decimal

	// TimeInForce defaults to good-till-cancelled.
	TimeInForce exchange.TimeInForce

	ExtendedHours bool

	// RefID is the client side idempotency key, which defaults to a random
	// uuid.
	RefID string
}

func (v *OrderRequest) setDefaults() {
	if v.Type == "" {
		v.Type = exchange.Market
	}
	if v.TimeInForce == "" {
		v.TimeInForce = exchange.GoodTillCancelled
	}
	if v.RefID == "" {
		v.RefID = uuid.New().String()
	}
}

// Check validates the request fields that do not depend on the asset.
func (v *OrderRequest) Check() error {
	if !v.Quantity.IsPositive() {
		return fmt.Errorf("order quantity must be positive: %w", os.ErrInvalid)
	}
	if v.Price.IsNegative() || v.StopPrice.IsNegative() {
		return fmt.Errorf("order prices cannot be negative: %w", os.ErrInvalid)
	}
	if err := v.TimeInForce.Check(); err != nil {
		return err
	}
	if _, _, err := exchange.SplitOrderType(v.Type); err != nil {
		return err
	}
	return nil
}

// Buy places a buy order for the asset.
func (c *Client) Buy(ctx context.Context, asset Asset, req *OrderRequest) (*Order, error) {
	return c.placeOrder(ctx, exchange.Buy, asset, req)
}

// Sell places a sell order for the asset.
func (c *Client) Sell(ctx context.Context, asset Asset, req *OrderRequest) (*Order, error) {
	return c.placeOrder(ctx, exchange.Sell, asset, req)
}

func (c *Client) placeOrder(ctx context.Context, side exchange.Side, asset Asset, r *OrderRequest) (*Order, error) {
	if err := side.Check(); err != nil {
		return nil, err
	}
	if asset == nil || r == nil {
		return nil, os.ErrInvalid
	}
	req := *r
	req.setDefaults()
	if err := req.Check(); err != nil {
		return nil, err
	}
	if !asset.Tradable() {
		return nil, fmt.Errorf("%s: %w", asset.Code(), exchange.ErrNotTradable)
	}

	if req.Price.IsZero() {
		price, err := Price(ctx, asset)
		if err != nil {
			return nil, fmt.Errorf("could not determine order price: %w", err)
		}
		req.Price = price
	}

	var resp *internal.Order
	switch v := asset.(type) {
	case *Currency:
		creq, err := c.cryptoOrderRequest(side, v, &req)
		if err != nil {
			return nil, err
		}
		if resp, err = c.client.CreateCryptoOrder(ctx, creq); err != nil {
			return nil, err
		}
	case *Stock:
		sreq, err := c.stockOrderRequest(side, v, &req)
		if err != nil {
			return nil, err
		}
		if resp, err = c.client.CreateStockOrder(ctx, sreq); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported asset type %T: %w", asset, os.ErrInvalid)
	}

	slog.Info("placed order", "id", resp.ID, "ref", req.RefID, "side", side, "asset", asset.Code(), "type", req.Type, "quantity", req.Quantity, "price", req.Price)

	order, err := c.newOrder(ctx, resp, false)
	if err != nil {
		return nil, err
	}
	order.asset = asset
	return order, nil
}

func (c *Client) cryptoOrderRequest(side exchange.Side, cur *Currency, req *OrderRequest) (*internal.CreateCryptoOrderRequest, error) {
	if req.Type != exchange.Market && req.Type != exchange.Limit {
		return nil, fmt.Errorf("currency orders must be market or limit orders: %w", os.ErrInvalid)
	}
	if !req.StopPrice.IsZero() {
		return nil, fmt.Errorf("currency orders cannot have a stop price: %w", os.ErrInvalid)
	}
	if c.nummusAccountID == "" {
		return nil, fmt.Errorf("no crypto account to place currency orders: %w", exchange.ErrAPI)
	}
	return &internal.CreateCryptoOrderRequest{
		AccountID:      c.nummusAccountID,
		CurrencyPairID: cur.pairID,
		Type:           string(req.Type),
		Side:           string(side),
		TimeInForce:    string(req.TimeInForce),
		Price:          req.Price,
		Quantity:       req.Quantity,
		RefID:          req.RefID,
	}, nil
}

func (c *Client) stockOrderRequest(side exchange.Side, stock *Stock, req *OrderRequest) (*internal.CreateStockOrderRequest, error) {
	apiType, trigger, err := exchange.SplitOrderType(req.Type)
	if err != nil {
		return nil, err
	}
	if trigger == exchange.Stop && req.StopPrice.IsZero() {
		return nil, fmt.Errorf("%s orders require a stop price: %w", req.Type, os.ErrInvalid)
	}
	if trigger != exchange.Stop && !req.StopPrice.IsZero() {
		return nil, fmt.Errorf("%s orders cannot have a stop price: %w", req.Type, os.ErrInvalid)
	}

	quantity := req.Quantity
	if !stock.fractional {
		quantity = quantity.Truncate(0)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("stock %s cannot be traded in fractional quantity %s: %w", stock.symbol, req.Quantity, os.ErrInvalid)
	}

	sreq := &internal.CreateStockOrderRequest{
		Account:       c.accountURL,
		Instrument:    stock.url,
		Symbol:        stock.symbol,
		Type:          apiType,
		Trigger:       string(trigger),
		Side:          string(side),
		TimeInForce:   string(req.TimeInForce),
		Price:         req.Price,
		Quantity:      quantity,
		RefID:         req.RefID,
		ExtendedHours: req.ExtendedHours,
	}
	if trigger == exchange.Stop {
		stop := req.StopPrice
		sreq.StopPrice = &stop
	}
	return sreq, nil
}
