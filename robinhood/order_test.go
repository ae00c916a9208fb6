// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/shopspring/decimal"
)

func TestPlaceStockOrder(t *testing.T) {
	ctx := context.Background()
	f := newFakeBroker(t)
	c := f.newClient()

	xyz, err := c.Lookup(ctx, "XYZ")
	if err != nil {
		t.Fatal(err)
	}

	req := &OrderRequest{
		Quantity:  decimal.RequireFromString("2.6"),
		Type:      exchange.StopLimit,
		Price:     decimal.NewFromInt(9),
		StopPrice: decimal.RequireFromString("9.5"),
	}
	order, err := c.Sell(ctx, xyz, req)
	if err != nil {
		t.Fatal(err)
	}
	if order.Asset() != xyz || order.Kind() != exchange.StockAsset || order.Side() != exchange.Sell {
		t.Fatalf("unexpected order %v", order)
	}
	if order.Type() != exchange.StopLimit {
		t.Fatalf("wanted stoplimit, got %s", order.Type())
	}

	var body map[string]any
	if err := json.Unmarshal(f.created[0], &body); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"type":          "limit",
		"trigger":       "stop",
		"side":          "sell",
		"time_in_force": "gtc",
		"quantity":      "2",
		"price":         "9",
		"stop_price":    "9.5",
		"symbol":        "XYZ",
		"account":       f.server.URL + "/accounts/ACC1/",
		"instrument":    f.server.URL + "/instruments/inst-xyz/",
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("%s: wanted %v, got %v", k, v, body[k])
		}
	}
	if ref, _ := body["ref_id"].(string); len(ref) != 36 {
		t.Fatalf("wanted a uuid ref id, got %q", ref)
	}
}

func TestStockQuantityRoundsDown(t *testing.T) {
	ctx := context.Background()
	f := newFakeBroker(t)
	c := f.newClient()

	xyz, _ := c.Lookup(ctx, "XYZ")
	for i, qty := range []string{"1.5", "1.99", "1"} {
		if _, err := c.Buy(ctx, xyz, &OrderRequest{Quantity: decimal.RequireFromString(qty), Type: exchange.Limit, Price: decimal.NewFromInt(9)}); err != nil {
			t.Fatal(err)
		}
		var body map[string]any
		if err := json.Unmarshal(f.created[i], &body); err != nil {
			t.Fatal(err)
		}
		if body["quantity"] != "1" {
			t.Fatalf("%s: wanted whole share quantity 1, got %v", qty, body["quantity"])
		}
	}
}

func TestPlaceOrderDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFakeBroker(t)
	c := f.newClient()

	aapl, _ := c.Lookup(ctx, "AAPL")
	if _, err := c.Buy(ctx, aapl, &OrderRequest{Quantity: decimal.RequireFromString("0.5"), RefID: "my-ref"}); err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal(f.created[0], &body); err != nil {
		t.Fatal(err)
	}
	if body["price"] != "150.25" || body["quantity"] != "0.5" || body["ref_id"] != "my-ref" {
		t.Fatalf("unexpected fractional market order body %v", body)
	}
	if body["type"] != "market" || body["trigger"] != "immediate" {
		t.Fatalf("wanted a market order, got %v", body)
	}
	if _, ok := body["stop_price"]; ok {
		t.Fatalf("market orders must not have a stop price")
	}

	btc, _ := c.Lookup(ctx, "BTC")
	order, err := c.Buy(ctx, btc, &OrderRequest{Quantity: decimal.RequireFromString("0.01"), Type: exchange.Limit, Price: decimal.NewFromInt(29000)})
	if err != nil {
		t.Fatal(err)
	}
	if order.Kind() != exchange.CurrencyAsset || order.Asset() != btc {
		t.Fatalf("unexpected currency order %v", order)
	}
	if err := json.Unmarshal(f.created[1], &body); err != nil {
		t.Fatal(err)
	}
	if body["account_id"] != "nummus-1" || body["currency_pair_id"] != "pair-btc" || body["type"] != "limit" {
		t.Fatalf("unexpected currency order body %v", body)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	ctx := context.Background()
	f := newFakeBroker(t)
	c := f.newClient()

	aapl, _ := c.Lookup(ctx, "AAPL")
	xyz, _ := c.Lookup(ctx, "XYZ")
	btc, _ := c.Lookup(ctx, "BTC")
	doge, _ := c.Lookup(ctx, "DOGE")
	halt, err := c.StockByID(ctx, "inst-halt")
	if err != nil {
		t.Fatal(err)
	}

	one := decimal.NewFromInt(1)
	tests := []struct {
		name  string
		asset Asset
		req   *OrderRequest
		want  error
	}{
		{"zero-quantity", aapl, &OrderRequest{}, os.ErrInvalid},
		{"bad-tif", aapl, &OrderRequest{Quantity: one, TimeInForce: "fok"}, os.ErrInvalid},
		{"bad-type", aapl, &OrderRequest{Quantity: one, Type: "trailing"}, os.ErrInvalid},
		{"stoploss-without-stop", aapl, &OrderRequest{Quantity: one, Type: exchange.StopLoss}, os.ErrInvalid},
		{"limit-with-stop", aapl, &OrderRequest{Quantity: one, Type: exchange.Limit, StopPrice: one}, os.ErrInvalid},
		{"whole-shares-only", xyz, &OrderRequest{Quantity: decimal.RequireFromString("0.2")}, os.ErrInvalid},
		{"currency-stop-type", btc, &OrderRequest{Quantity: one, Type: exchange.StopLoss, StopPrice: one}, os.ErrInvalid},
		{"currency-stop-price", btc, &OrderRequest{Quantity: one, StopPrice: one}, os.ErrInvalid},
		{"untradable-currency", doge, &OrderRequest{Quantity: one}, exchange.ErrNotTradable},
		{"untradable-stock", halt, &OrderRequest{Quantity: one}, exchange.ErrNotTradable},
		{"error-code", aapl, &OrderRequest{Quantity: decimal.NewFromInt(5000)}, exchange.ErrAPI},
	}
	for _, test := range tests {
		if _, err := c.Buy(ctx, test.asset, test.req); !errors.Is(err, test.want) {
			t.Fatalf("%s: wanted %v, got %v", test.name, test.want, err)
		}
	}
	if len(f.created) != 0 {
		t.Fatalf("wanted no orders to be created, got %d", len(f.created))
	}
}

func TestOrderStateIsNeverCached(t *testing.T) {
	ctx := context.Background()
	f := newFakeBroker(t)
	c := f.newClient()

	f.addOrder("o1", false, time.Now(), "queued", "confirmed", "partially_filled", "filled")
	order, err := c.GetOrder(ctx, exchange.StockAsset, "o1")
	if err != nil {
		t.Fatal(err)
	}
	if order.LastState() != exchange.Queued {
		t.Fatalf("wanted queued, got %s", order.LastState())
	}

	receiver, err := c.OrderUpdates()
	if err != nil {
		t.Fatal(err)
	}
	defer receiver.Close()

	var states []exchange.OrderState
	for i := 0; i < 4; i++ {
		state, err := order.State(ctx)
		if err != nil {
			t.Fatal(err)
		}
		states = append(states, state)
	}
	want := []exchange.OrderState{"confirmed", "partially_filled", "filled", "filled"}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("wanted %v, got %v", want, states)
		}
	}
	if n := f.getCounts("o1"); n != 5 {
		t.Fatalf("wanted 5 order fetches, got %d", n)
	}

	update, err := receiver.Receive()
	if err != nil {
		t.Fatal(err)
	}
	if update.OrderID != "o1" || update.State != "confirmed" || update.Symbol != "AAPL" {
		t.Fatalf("unexpected order update %#v", update)
	}
}

func TestOrderAssetResolution(t *testing.T) {
	ctx := context.Background()
	f := newFakeBroker(t)
	c := f.newClient()

	f.addOrder("stock-1", false, time.Now().Add(-time.Hour), "filled")
	f.addOrder("crypto-1", true, time.Now(), "cancelled")

	orders, err := c.QueryOrders(ctx, &QueryOptions{SkipLookup: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("wanted 2 orders, got %d", len(orders))
	}
	// Newest first.
	if orders[0].ID() != "crypto-1" || orders[1].ID() != "stock-1" {
		t.Fatalf("wanted newest first order, got %v", orders)
	}
	if orders[0].Asset() == nil {
		t.Fatalf("currency orders must always resolve from the pair cache")
	}
	if orders[1].Asset() != nil {
		t.Fatalf("wanted unresolved stock asset without lookup")
	}
	if f.instrumentGets != 0 {
		t.Fatalf("wanted no instrument fetches, got %d", f.instrumentGets)
	}

	orders, err = c.QueryOrders(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if orders[1].Asset() == nil || orders[1].Asset().Code() != "AAPL" {
		t.Fatalf("wanted stock asset to be resolved by lookup")
	}
	if f.instrumentGets != 1 {
		t.Fatalf("wanted 1 instrument fetch, got %d", f.instrumentGets)
	}

	// Cached instrument is reused even without lookup.
	orders, err = c.QueryOrders(ctx, &QueryOptions{SkipLookup: true, SkipCurrencies: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].Asset() == nil {
		t.Fatalf("wanted cached stock asset")
	}
	if f.instrumentGets != 1 {
		t.Fatalf("wanted 1 instrument fetch, got %d", f.instrumentGets)
	}

	filled, err := c.QueryOrders(ctx, &QueryOptions{State: exchange.Filled})
	if err != nil {
		t.Fatal(err)
	}
	if len(filled) != 1 || filled[0].ID() != "stock-1" {
		t.Fatalf("wanted only the filled order, got %v", filled)
	}
}

func TestOrderCancel(t *testing.T) {
	ctx := context.Background()
	f := newFakeBroker(t)
	c := f.newClient()

	f.addOrder("o1", true, time.Now(), "confirmed")
	order, err := c.GetOrder(ctx, exchange.CurrencyAsset, "o1")
	if err != nil {
		t.Fatal(err)
	}
	if err := order.Cancel(ctx); err != nil {
		t.Fatal(err)
	}
	if state, err := order.State(ctx); err != nil || state != exchange.Cancelled {
		t.Fatalf("wanted cancelled, got %s (%v)", state, err)
	}

	f.addOrder("o2", false, time.Now(), "confirmed")
	f.failCancel["o2"] = true
	order2, err := c.GetOrder(ctx, exchange.StockAsset, "o2")
	if err != nil {
		t.Fatal(err)
	}
	if err := order2.Cancel(ctx); !errors.Is(err, exchange.ErrAPI) {
		t.Fatalf("wanted ErrAPI, got %v", err)
	}
}

func TestOrderRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFakeBroker(t)
	c := f.newClient()

	f.addOrder("o2", true, time.Now(), "unconfirmed", "confirmed")
	order, err := c.GetOrder(ctx, exchange.CurrencyAsset, "o2")
	if err != nil {
		t.Fatal(err)
	}
	if err := order.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if order.LastState() != exchange.Confirmed {
		t.Fatalf("wanted confirmed, got %s", order.LastState())
	}
	if n := f.getCounts("o2"); n != 2 {
		t.Fatalf("wanted 2 order fetches, got %d", n)
	}
}
