// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bvk/tradinhood/robinhood/internal"
	"github.com/shopspring/decimal"
)

// fakeBroker is an in-memory brokerage serving the subset of the api used by
// the client.
type fakeBroker struct {
	t *testing.T

	server *httptest.Server

	mu sync.Mutex

	pairs       []*internal.CurrencyPair
	instruments map[string]*internal.Instrument
	prices      map[string]string

	positions []*internal.Position
	holdings  []*internal.Holding

	orders     map[string]*internal.Order
	orderIDs   []string
	nextStates map[string][]string

	// failCancel rejects cancel requests for the order ids.
	failCancel map[string]bool

	created   []json.RawMessage
	cancelled []string

	instrumentGets int
	orderGets      map[string]int
}

func newFakeBroker(t *testing.T) *fakeBroker {
	f := &fakeBroker{
		t:           t,
		instruments: make(map[string]*internal.Instrument),
		prices:      make(map[string]string),
		orders:      make(map[string]*internal.Order),
		nextStates:  make(map[string][]string),
		failCancel:  make(map[string]bool),
		orderGets:   make(map[string]int),
	}

	f.pairs = []*internal.CurrencyPair{
		{
			ID:            "pair-btc",
			Symbol:        "BTC-USD",
			Tradability:   "tradable",
			AssetCurrency: internal.Currency{ID: "asset-btc", Code: "BTC", Name: "Bitcoin", Type: "cryptocurrency"},
		},
		{
			ID:            "pair-doge",
			Symbol:        "DOGE-USD",
			Tradability:   "untradable",
			AssetCurrency: internal.Currency{ID: "asset-doge", Code: "DOGE", Name: "Dogecoin", Type: "cryptocurrency"},
		},
	}
	f.prices["BTC"] = "30000.50"
	f.prices["AAPL"] = "150.25"
	f.prices["XYZ"] = "10.00"

	mux := http.NewServeMux()
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	f.addInstrument("inst-aapl", "AAPL", true, "tradable")
	f.addInstrument("inst-xyz", "XYZ", true, "untradable")
	f.addInstrument("inst-halt", "HALT", false, "untradable")

	mux.HandleFunc("GET /nummus/currency_pairs/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.writePage(w, f.pairs)
	})
	mux.HandleFunc("GET /nummus/currency_pairs/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		for _, p := range f.pairs {
			if p.ID == r.PathValue("id") {
				f.write(w, p)
				return
			}
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("GET /accounts/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.writePage(w, []*internal.Account{{AccountNumber: "ACC1"}})
	})
	mux.HandleFunc("GET /accounts/{num}/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, &internal.Account{
			AccountNumber:              r.PathValue("num"),
			Cash:                       decimal.RequireFromString("1000.50"),
			BuyingPower:                decimal.RequireFromString("900.25"),
			CashAvailableForWithdrawal: decimal.RequireFromString("800"),
			UnsettledFunds:             decimal.RequireFromString("12.5"),
		})
	})
	mux.HandleFunc("GET /nummus/accounts/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.writePage(w, []*internal.NummusAccount{{ID: "nummus-1", Status: "active"}})
	})
	mux.HandleFunc("GET /instruments/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var found []*internal.Instrument
		symbol := r.URL.Query().Get("symbol")
		for _, v := range f.instruments {
			if v.Symbol == symbol {
				found = append(found, v)
			}
		}
		f.writePage(w, found)
	})
	mux.HandleFunc("GET /instruments/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.instrumentGets++
		v, ok := f.instruments[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		f.write(w, v)
	})
	mux.HandleFunc("GET /instruments/{id}/popularity/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, &internal.Popularity{NumOpenPositions: 1234})
	})
	mux.HandleFunc("GET /quotes/{symbol}/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		price, ok := f.prices[r.PathValue("symbol")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		p := decimal.RequireFromString(price)
		f.write(w, &internal.Quote{
			Symbol:         r.PathValue("symbol"),
			LastTradePrice: p,
			BidPrice:       p.Sub(decimal.NewFromInt(1)),
			AskPrice:       p.Add(decimal.NewFromInt(1)),
		})
	})
	mux.HandleFunc("GET /quotes/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var quotes []*internal.Quote
		for _, u := range strings.Split(r.URL.Query().Get("instruments"), ",") {
			v, ok := f.instruments[internal.InstrumentID(u)]
			if !ok {
				quotes = append(quotes, nil)
				continue
			}
			quotes = append(quotes, &internal.Quote{Symbol: v.Symbol, LastTradePrice: decimal.RequireFromString(f.prices[v.Symbol])})
		}
		f.writePage(w, quotes)
	})
	mux.HandleFunc("GET /marketdata/forex/quotes/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		p := decimal.RequireFromString(f.prices["BTC"])
		f.write(w, &internal.ForexQuote{ID: r.PathValue("id"), MarkPrice: p, BidPrice: p.Sub(decimal.NewFromInt(5)), AskPrice: p.Add(decimal.NewFromInt(5))})
	})
	mux.HandleFunc("GET /marketdata/historicals/{symbol}/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, &internal.Historicals{
			Symbol:      r.PathValue("symbol"),
			Interval:    r.URL.Query().Get("interval"),
			Historicals: testFrames(3, 24*time.Hour),
		})
	})
	mux.HandleFunc("GET /marketdata/forex/historicals/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, &internal.Historicals{
			Interval:   r.URL.Query().Get("interval"),
			DataPoints: testFrames(4, 5*time.Minute),
		})
	})
	mux.HandleFunc("GET /markets/{mic}/hours/{date}/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, &internal.MarketHours{Date: r.PathValue("date"), IsOpen: r.PathValue("mic") == "XNAS"})
	})
	mux.HandleFunc("GET /positions/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.writePage(w, f.positions)
	})
	mux.HandleFunc("GET /nummus/holdings/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.writePage(w, f.holdings)
	})
	mux.HandleFunc("POST /orders/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.createOrder(w, r, false)
	})
	mux.HandleFunc("POST /nummus/orders/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.createOrder(w, r, true)
	})
	mux.HandleFunc("GET /orders/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.listOrders(w, false)
	})
	mux.HandleFunc("GET /nummus/orders/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.listOrders(w, true)
	})
	mux.HandleFunc("GET /orders/{id}/{$}", f.getOrder)
	mux.HandleFunc("GET /nummus/orders/{id}/{$}", f.getOrder)
	mux.HandleFunc("POST /orders/{id}/cancel/{$}", f.cancelOrder)
	mux.HandleFunc("POST /nummus/orders/{id}/cancel/{$}", f.cancelOrder)
	f.addResearchHandlers(mux)
	return f
}

// addResearchHandlers serves the read-only market data endpoints. Only the
// AAPL instrument has market data.
func (f *fakeBroker) addResearchHandlers(mux *http.ServeMux) {
	published := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	mux.HandleFunc("GET /marketdata/fundamentals/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "inst-aapl" || r.URL.Query().Get("include_inactive") != "true" {
			http.NotFound(w, r)
			return
		}
		f.write(w, &internal.Fundamentals{
			Sector:       "Technology",
			CEO:          "Someone",
			NumEmployees: 1000,
			YearFounded:  1976,
			MarketCap:    decimal.RequireFromString("2500000000000"),
			PERatio:      decimal.RequireFromString("28.5"),
		})
	})
	mux.HandleFunc("GET /marketdata/earnings/{$}", func(w http.ResponseWriter, r *http.Request) {
		if internal.InstrumentID(r.URL.Query().Get("instrument")) != "inst-aapl" {
			f.writePage(w, []*internal.Earnings{})
			return
		}
		past := &internal.Earnings{
			Symbol:  "AAPL",
			Year:    2023,
			Quarter: 4,
			EPS:     internal.EarningsEPS{Estimate: decimal.RequireFromString("2.10"), Actual: decimal.RequireFromString("2.18")},
			Report:  &internal.EarningsReport{Date: "2024-02-01", Timing: "pm", Verified: true},
			Call:    &internal.EarningsCall{BroadcastURL: "https://example.com/call"},
		}
		past.Call.Datetime.Time = published
		next := &internal.Earnings{
			Symbol:  "AAPL",
			Year:    2024,
			Quarter: 1,
			EPS:     internal.EarningsEPS{Estimate: decimal.RequireFromString("1.50")},
		}
		f.writePage(w, []*internal.Earnings{past, next})
	})
	ratings := func(id string) *internal.Ratings {
		v := &internal.Ratings{
			InstrumentID: id,
			Summary:      &internal.RatingsSummary{NumBuyRatings: 6, NumHoldRatings: 3, NumSellRatings: 1},
			Ratings: []*internal.Rating{
				{Type: "buy", Text: "Strong services growth"},
				{Type: "sell", Text: "Expensive"},
			},
		}
		v.RatingsPublishedAt.Time = published
		return v
	}
	mux.HandleFunc("GET /midlands/ratings/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, ratings(r.PathValue("id")))
	})
	mux.HandleFunc("GET /midlands/ratings/{$}", func(w http.ResponseWriter, r *http.Request) {
		var rows []*internal.Ratings
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			if id == "inst-aapl" {
				rows = append(rows, ratings(id))
			}
		}
		f.writePage(w, rows)
	})
	mux.HandleFunc("GET /midlands/news/{symbol}/{$}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			f.writePage(w, []*internal.NewsArticle{{Title: "Second page", Source: "wire"}})
			return
		}
		page := map[string]any{
			"results": []*internal.NewsArticle{{Title: r.PathValue("symbol") + " launches a product", Source: "wire"}},
			"next":    f.server.URL + "/midlands/news/" + r.PathValue("symbol") + "/?page=2",
		}
		f.write(w, page)
	})
	mux.HandleFunc("GET /dora/instruments/similar/{id}/{$}", func(w http.ResponseWriter, r *http.Request) {
		f.write(w, &internal.Similar{Similar: []*internal.SimilarInstrument{{InstrumentID: "inst-xyz", Symbol: "XYZ"}}})
	})
	mux.HandleFunc("GET /midlands/tags/tag/{tag}/{$}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("tag") != "100-most-popular" {
			http.NotFound(w, r)
			return
		}
		f.write(w, &internal.Tag{
			Slug:        r.PathValue("tag"),
			Name:        "100 Most Popular",
			Instruments: []string{f.server.URL + "/instruments/inst-aapl/", f.server.URL + "/instruments/inst-xyz/"},
		})
	})
	mux.HandleFunc("GET /portfolios/historicals/{account}/{$}", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("account") != r.PathValue("account") || q.Get("interval") != "day" {
			http.NotFound(w, r)
			return
		}
		frame := &internal.EquityFrame{
			Session:     "reg",
			OpenEquity:  decimal.NewFromInt(1000),
			CloseEquity: decimal.NewFromInt(1010),
			NetReturn:   decimal.NewFromInt(10),
		}
		frame.BeginsAt.Time = published
		f.write(w, &internal.PortfolioHistoricals{Interval: "day", EquityHistoricals: []*internal.EquityFrame{frame}})
	})
}

func testFrames(n int, d time.Duration) []*internal.HistoricalFrame {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var frames []*internal.HistoricalFrame
	for i := 0; i < n; i++ {
		p := decimal.NewFromInt(int64(100 + i))
		frames = append(frames, &internal.HistoricalFrame{
			OpenPrice:  p,
			ClosePrice: p.Add(decimal.NewFromInt(1)),
			HighPrice:  p.Add(decimal.NewFromInt(2)),
			LowPrice:   p.Sub(decimal.NewFromInt(1)),
			Volume:     decimal.NewFromInt(1000),
		})
		frames[i].BeginsAt.Time = start.Add(time.Duration(i) * d)
	}
	return frames
}

func (f *fakeBroker) addInstrument(id, symbol string, tradeable bool, fractional string) {
	f.instruments[id] = &internal.Instrument{
		ID:                    id,
		URL:                   f.server.URL + "/instruments/" + id + "/",
		Symbol:                symbol,
		Name:                  symbol + " Inc.",
		SimpleName:            symbol,
		Type:                  "stock",
		Tradeable:             tradeable,
		FractionalTradability: fractional,
		Market:                f.server.URL + "/markets/XNAS/",
	}
}

func (f *fakeBroker) options() *Options {
	return &Options{
		APIURL:            f.server.URL + "/",
		NummusURL:         f.server.URL + "/nummus/",
		DoraURL:           f.server.URL + "/dora/",
		RequestsPerSecond: 10000,
	}
}

func (f *fakeBroker) newClient() *Client {
	c, err := New(context.Background(), "test-token", f.options())
	if err != nil {
		f.t.Fatal(err)
	}
	f.t.Cleanup(func() { c.Close() })
	return c
}

func (f *fakeBroker) write(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.t.Errorf("could not encode response: %v", err)
	}
}

func (f *fakeBroker) writePage(w http.ResponseWriter, results any) {
	f.write(w, map[string]any{"results": results, "next": nil})
}

// addOrder adds an order with a scripted sequence of states. Every get
// request advances the order to the next state; the last state sticks.
func (f *fakeBroker) addOrder(id string, crypto bool, created time.Time, states ...string) *internal.Order {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := &internal.Order{
		ID:          id,
		Side:        "buy",
		Type:        "market",
		Trigger:     "immediate",
		TimeInForce: "gtc",
		State:       states[0],
		Quantity:    decimal.NewFromInt(1),
		Price:       decimal.NewFromInt(100),
	}
	v.CreatedAt.Time = created
	if crypto {
		v.CurrencyPairID = "pair-btc"
		v.CancelURL = f.server.URL + "/nummus/orders/" + id + "/cancel/"
	} else {
		v.Instrument = f.server.URL + "/instruments/inst-aapl/"
		v.Cancel = f.server.URL + "/orders/" + id + "/cancel/"
	}
	f.orders[id] = v
	f.orderIDs = append(f.orderIDs, id)
	f.nextStates[id] = states[1:]
	return v
}

func (f *fakeBroker) createOrder(w http.ResponseWriter, r *http.Request, crypto bool) {
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		Side        string          `json:"side"`
		Type        string          `json:"type"`
		Trigger     string          `json:"trigger"`
		TimeInForce string          `json:"time_in_force"`
		Quantity    decimal.Decimal `json:"quantity"`
		Price       decimal.Decimal `json:"price"`
		RefID       string          `json:"ref_id"`
		Instrument  string          `json:"instrument"`
		PairID      string          `json:"currency_pair_id"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Quantity.GreaterThan(decimal.NewFromInt(1000)) {
		f.write(w, &internal.APIStatus{ErrorCode: "insufficient_buying_power"})
		return
	}

	f.mu.Lock()
	f.created = append(f.created, body)
	id := fmt.Sprintf("order-%d", len(f.created))
	f.mu.Unlock()

	v := f.addOrder(id, crypto, time.Now(), "unconfirmed", "confirmed", "filled")

	f.mu.Lock()
	defer f.mu.Unlock()
	v.Side, v.Type, v.Trigger, v.TimeInForce = req.Side, req.Type, req.Trigger, req.TimeInForce
	v.Quantity, v.Price, v.RefID = req.Quantity, req.Price, req.RefID
	if !crypto {
		v.Instrument = req.Instrument
	}
	w.WriteHeader(http.StatusCreated)
	f.write(w, v)
}

func (f *fakeBroker) listOrders(w http.ResponseWriter, crypto bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var vs []*internal.Order
	for _, id := range f.orderIDs {
		if v := f.orders[id]; (v.CurrencyPairID != "") == crypto {
			vs = append(vs, v)
		}
	}
	f.writePage(w, vs)
}

func (f *fakeBroker) getOrder(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := r.PathValue("id")
	v, ok := f.orders[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	f.orderGets[id]++
	f.write(w, v)
	if next := f.nextStates[id]; len(next) > 0 {
		v.State, f.nextStates[id] = next[0], next[1:]
	}
}

func (f *fakeBroker) cancelOrder(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := r.PathValue("id")
	v, ok := f.orders[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if f.failCancel[id] {
		w.WriteHeader(http.StatusBadRequest)
		f.write(w, &internal.APIStatus{ErrorCode: "order_not_cancellable"})
		return
	}
	f.cancelled = append(f.cancelled, id)
	v.State = "cancelled"
	f.nextStates[id] = nil
	f.write(w, struct{}{})
}

func (f *fakeBroker) getCounts(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderGets[id]
}
