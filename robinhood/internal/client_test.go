// Copyright (c) 2025 BVK Chaitanya

package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bvk/tradinhood/exchange"
	jose "gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts := &Options{
		APIURL:            server.URL + "/",
		NummusURL:         server.URL + "/nummus/",
		RequestsPerSecond: 1000,
		MaxRetries:        2,
	}
	c, err := New("test-token", opts)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestPagination(t *testing.T) {
	var server string
	mux := http.NewServeMux()
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		if v := r.Header.Get("Authorization"); v != "Bearer test-token" {
			t.Errorf("wanted bearer token, got %q", v)
		}
		page := r.URL.Query().Get("page")
		switch page {
		case "":
			fmt.Fprintf(w, `{"results": [{"id": "a"}, {"id": "b"}], "next": "%s/orders/?page=2"}`, server)
		case "2":
			fmt.Fprintf(w, `{"results": [{"id": "c"}], "next": "%s/orders/?page=3"}`, server)
		case "3":
			fmt.Fprintf(w, `{"results": [{"id": "d"}], "next": null}`)
		}
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()
	server = ts.URL

	c, err := New("test-token", &Options{APIURL: ts.URL, NummusURL: ts.URL, RequestsPerSecond: 1000})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	two, err := c.ListStockOrders(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(two) != 3 || two[2].ID != "c" {
		t.Fatalf("wanted 3 orders from 2 pages, got %d", len(two))
	}

	all, err := c.ListStockOrders(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 || all[3].ID != "d" {
		t.Fatalf("wanted 4 orders from all pages, got %d", len(all))
	}
}

func TestRetryOnThrottle(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"symbol": "AAPL", "last_trade_price": "150.25", "ask_price": "150.30", "bid_price": "150.20"}`)
	}))

	quote, err := c.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if v := quote.LastTradePrice.String(); v != "150.25" {
		t.Fatalf("wanted 150.25, got %s", v)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("wanted 2 calls, got %d", n)
	}
}

func TestRetryLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	if _, err := c.GetQuote(context.Background(), "AAPL"); !errors.Is(err, exchange.ErrAPI) {
		t.Fatalf("wanted ErrAPI, got %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("wanted 3 calls, got %d", n)
	}
}

func TestErrorResponses(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/nummus/orders/"):
			fmt.Fprint(w, `{"error_code": "insufficient_funds", "detail": "not enough buying power"}`)
		case strings.HasPrefix(r.URL.Path, "/orders/"):
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"detail": "bad request"}`)
		case strings.HasPrefix(r.URL.Path, "/quotes/"):
			fmt.Fprint(w, `{not json`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	ctx := context.Background()

	if _, err := c.CreateCryptoOrder(ctx, &CreateCryptoOrderRequest{Side: "buy"}); !errors.Is(err, exchange.ErrAPI) {
		t.Fatalf("wanted ErrAPI for error_code response, got %v", err)
	}
	if _, err := c.CreateStockOrder(ctx, &CreateStockOrderRequest{Side: "buy"}); !errors.Is(err, exchange.ErrAPI) {
		t.Fatalf("wanted ErrAPI for bad status, got %v", err)
	}
	if _, err := c.GetQuote(ctx, "AAPL"); !errors.Is(err, exchange.ErrAPI) {
		t.Fatalf("wanted ErrAPI for bad payload, got %v", err)
	}
	if _, err := c.GetInstrument(ctx, "missing"); !errors.Is(err, exchange.ErrAPI) {
		t.Fatalf("wanted ErrAPI for not found, got %v", err)
	}
}

func TestPaths(t *testing.T) {
	c, err := New("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if v := c.InstrumentURL("abc"); v != "https://api.robinhood.com/instruments/abc/" {
		t.Fatalf("unexpected instrument url %s", v)
	}
	if v := c.NummusPath("orders", "xyz").String(); v != "https://nummus.robinhood.com/orders/xyz/" {
		t.Fatalf("unexpected nummus url %s", v)
	}
	if v := InstrumentID("https://api.robinhood.com/instruments/abc-123/"); v != "abc-123" {
		t.Fatalf("wanted abc-123, got %s", v)
	}
	if v := InstrumentID("https://api.robinhood.com/instruments/abc-123"); v != "abc-123" {
		t.Fatalf("wanted abc-123, got %s", v)
	}
}

func signedToken(t *testing.T, expiry time.Time) string {
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: []byte("0123456789abcdef0123456789abcdef")},
		(&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		t.Fatal(err)
	}
	claims := &jwt.Claims{
		Subject: "user",
		Expiry:  jwt.NewNumericDate(expiry),
	}
	token, err := jwt.Signed(signer).Claims(claims).CompactSerialize()
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestTokenExpiry(t *testing.T) {
	expiry := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	valid := signedToken(t, expiry)
	if v, ok := TokenExpiry(valid); !ok || !v.Equal(expiry) {
		t.Fatalf("wanted %s, got %s", expiry, v)
	}
	if _, err := New(valid, nil); err != nil {
		t.Fatal(err)
	}

	expired := signedToken(t, time.Now().Add(-time.Hour))
	if _, err := New(expired, nil); !errors.Is(err, exchange.ErrAPI) {
		t.Fatalf("wanted ErrAPI for expired token, got %v", err)
	}

	if _, ok := TokenExpiry("opaque-token"); ok {
		t.Fatalf("wanted no expiry for opaque tokens")
	}
}
