// Copyright (c) 2025 BVK Chaitanya

package internal

import (
	"fmt"

	"github.com/bvk/tradinhood/exchange"
	"github.com/shopspring/decimal"
)

// APIStatus holds the error fields that may be present in any response.
type APIStatus struct {
	ErrorCode string `json:"error_code,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Err returns a non-nil error if the response carries an error code.
func (v *APIStatus) Err() error {
	if v.ErrorCode == "" {
		return nil
	}
	if v.Detail != "" {
		return fmt.Errorf("error code %s (%s): %w", v.ErrorCode, v.Detail, exchange.ErrAPI)
	}
	return fmt.Errorf("error code %s: %w", v.ErrorCode, exchange.ErrAPI)
}

type Page[T any] struct {
	APIStatus

	Results  []*T   `json:"results"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
}

type Currency struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`

	Increment decimal.Decimal `json:"increment"`
}

type CurrencyPair struct {
	APIStatus

	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Tradability string `json:"tradability"`

	AssetCurrency Currency `json:"asset_currency"`
	QuoteCurrency Currency `json:"quote_currency"`

	MinOrderSize              decimal.Decimal `json:"min_order_size"`
	MaxOrderSize              decimal.Decimal `json:"max_order_size"`
	MinOrderPriceIncrement    decimal.Decimal `json:"min_order_price_increment"`
	MinOrderQuantityIncrement decimal.Decimal `json:"min_order_quantity_increment"`
}

type Instrument struct {
	APIStatus

	ID         string `json:"id"`
	URL        string `json:"url"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	SimpleName string `json:"simple_name"`
	Type       string `json:"type"`
	State      string `json:"state"`
	Country    string `json:"country"`

	Tradeable             bool   `json:"tradeable"`
	Tradability           string `json:"tradability"`
	FractionalTradability string `json:"fractional_tradability"`

	Market          string `json:"market"`
	Quote           string `json:"quote"`
	TradableChainID string `json:"tradable_chain_id"`
	BloombergUnique string `json:"bloomberg_unique"`

	MinTickSize decimal.Decimal `json:"min_tick_size"`
}

type Quote struct {
	APIStatus

	Symbol     string `json:"symbol"`
	Instrument string `json:"instrument"`

	LastTradePrice              decimal.Decimal `json:"last_trade_price"`
	LastExtendedHoursTradePrice decimal.Decimal `json:"last_extended_hours_trade_price"`
	PreviousClose               decimal.Decimal `json:"previous_close"`

	AskPrice decimal.Decimal `json:"ask_price"`
	AskSize  int64           `json:"ask_size"`
	BidPrice decimal.Decimal `json:"bid_price"`
	BidSize  int64           `json:"bid_size"`

	TradingHalted bool                `json:"trading_halted"`
	UpdatedAt     exchange.RemoteTime `json:"updated_at"`
}

type ForexQuote struct {
	APIStatus

	ID     string `json:"id"`
	Symbol string `json:"symbol"`

	MarkPrice decimal.Decimal `json:"mark_price"`
	AskPrice  decimal.Decimal `json:"ask_price"`
	BidPrice  decimal.Decimal `json:"bid_price"`
	HighPrice decimal.Decimal `json:"high_price"`
	LowPrice  decimal.Decimal `json:"low_price"`
	OpenPrice decimal.Decimal `json:"open_price"`
	Volume    decimal.Decimal `json:"volume"`
}

type HistoricalFrame struct {
	BeginsAt exchange.RemoteTime `json:"begins_at"`

	OpenPrice  decimal.Decimal `json:"open_price"`
	ClosePrice decimal.Decimal `json:"close_price"`
	HighPrice  decimal.Decimal `json:"high_price"`
	LowPrice   decimal.Decimal `json:"low_price"`
	Volume     decimal.Decimal `json:"volume"`

	Session      string `json:"session"`
	Interpolated bool   `json:"interpolated"`
}

// Historicals is returned by both stock and forex history endpoints; stock
// responses use the historicals field and forex responses use data_points.
type Historicals struct {
	APIStatus

	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Span     string `json:"span"`
	Bounds   string `json:"bounds"`

	Historicals []*HistoricalFrame `json:"historicals"`
	DataPoints  []*HistoricalFrame `json:"data_points"`
}

// Frames returns whichever of the frame lists is populated.
func (v *Historicals) Frames() []*HistoricalFrame {
	if len(v.Historicals) != 0 {
		return v.Historicals
	}
	return v.DataPoints
}

type MarketHours struct {
	APIStatus

	Date     string              `json:"date"`
	IsOpen   bool                `json:"is_open"`
	OpensAt  exchange.RemoteTime `json:"opens_at"`
	ClosesAt exchange.RemoteTime `json:"closes_at"`
}

type Account struct {
	APIStatus

	URL           string `json:"url"`
	AccountNumber string `json:"account_number"`
	Type          string `json:"type"`

	Cash                       decimal.Decimal `json:"cash"`
	BuyingPower                decimal.Decimal `json:"buying_power"`
	CashAvailableForWithdrawal decimal.Decimal `json:"cash_available_for_withdrawal"`
	UnsettledFunds             decimal.Decimal `json:"unsettled_funds"`
}

type NummusAccount struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
}

type Position struct {
	Instrument string `json:"instrument"`
	Account    string `json:"account"`

	Quantity        decimal.Decimal `json:"quantity"`
	AverageBuyPrice decimal.Decimal `json:"average_buy_price"`

	SharesHeldForBuys              decimal.Decimal `json:"shares_held_for_buys"`
	SharesHeldForSells             decimal.Decimal `json:"shares_held_for_sells"`
	SharesHeldForOptionsCollateral decimal.Decimal `json:"shares_held_for_options_collateral"`
	SharesHeldForOptionsEvents     decimal.Decimal `json:"shares_held_for_options_events"`
	SharesHeldForStockGrants       decimal.Decimal `json:"shares_held_for_stock_grants"`
}

// Held returns the quantity held for pending operations.
func (v *Position) Held() decimal.Decimal {
	return v.SharesHeldForBuys.
		Add(v.SharesHeldForSells).
		Add(v.SharesHeldForOptionsCollateral).
		Add(v.SharesHeldForOptionsEvents).
		Add(v.SharesHeldForStockGrants)
}

type Holding struct {
	ID       string   `json:"id"`
	Currency Currency `json:"currency"`

	Quantity            decimal.Decimal `json:"quantity"`
	QuantityAvailable   decimal.Decimal `json:"quantity_available"`
	QuantityHeldForBuy  decimal.Decimal `json:"quantity_held_for_buy"`
	QuantityHeldForSell decimal.Decimal `json:"quantity_held_for_sell"`
}

// Held returns the quantity held for pending orders.
func (v *Holding) Held() decimal.Decimal {
	return v.QuantityHeldForBuy.Add(v.QuantityHeldForSell)
}

// Order is the common shape of stock and crypto orders. Stock orders refer
// to the instrument url and crypto orders refer to the currency pair id.
type Order struct {
	APIStatus

	ID    string `json:"id"`
	RefID string `json:"ref_id"`
	URL   string `json:"url"`

	Side        string `json:"side"`
	Type        string `json:"type"`
	Trigger     string `json:"trigger"`
	TimeInForce string `json:"time_in_force"`
	State       string `json:"state"`

	CreatedAt         exchange.RemoteTime `json:"created_at"`
	UpdatedAt         exchange.RemoteTime `json:"updated_at"`
	LastTransactionAt exchange.RemoteTime `json:"last_transaction_at"`

	Quantity           decimal.Decimal `json:"quantity"`
	CumulativeQuantity decimal.Decimal `json:"cumulative_quantity"`
	Price              decimal.Decimal `json:"price"`
	StopPrice          decimal.Decimal `json:"stop_price"`
	AveragePrice       decimal.Decimal `json:"average_price"`

	ExtendedHours bool `json:"extended_hours"`

	Cancel    string `json:"cancel"`
	CancelURL string `json:"cancel_url"`

	Instrument     string `json:"instrument"`
	Symbol         string `json:"symbol"`
	CurrencyPairID string `json:"currency_pair_id"`
	Account        string `json:"account"`
	AccountID      string `json:"account_id"`
}

// CancelLink returns the url to cancel the order, which is empty when the
// order is not cancellable.
func (v *Order) CancelLink() string {
	if v.Cancel != "" {
		return v.Cancel
	}
	return v.CancelURL
}

type CreateStockOrderRequest struct {
	Account    string `json:"account"`
	Instrument string `json:"instrument"`
	Symbol     string `json:"symbol"`

	Type        string `json:"type"`
	Trigger     string `json:"trigger"`
	Side        string `json:"side"`
	TimeInForce string `json:"time_in_force"`

	Price     decimal.Decimal  `json:"price"`
	StopPrice *decimal.Decimal `json:"stop_price,omitempty"`
	Quantity  decimal.Decimal  `json:"quantity"`

	RefID         string `json:"ref_id"`
	ExtendedHours bool   `json:"extended_hours"`
}

type CreateCryptoOrderRequest struct {
	AccountID      string `json:"account_id"`
	CurrencyPairID string `json:"currency_pair_id"`

	Type        string `json:"type"`
	Side        string `json:"side"`
	TimeInForce string `json:"time_in_force"`

	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`

	RefID string `json:"ref_id"`
}

type CancelOrderResponse struct {
	APIStatus
}

type Popularity struct {
	APIStatus

	Instrument       string `json:"instrument"`
	NumOpenPositions int64  `json:"num_open_positions"`
}

type Fundamentals struct {
	APIStatus

	Instrument   string `json:"instrument"`
	Description  string `json:"description"`
	Sector       string `json:"sector"`
	Industry     string `json:"industry"`
	CEO          string `json:"ceo"`
	Headquarters string `json:"headquarters_city"`
	NumEmployees int64  `json:"num_employees"`
	YearFounded  int    `json:"year_founded"`

	Open              decimal.Decimal `json:"open"`
	High              decimal.Decimal `json:"high"`
	Low               decimal.Decimal `json:"low"`
	Volume            decimal.Decimal `json:"volume"`
	AverageVolume     decimal.Decimal `json:"average_volume"`
	High52Weeks       decimal.Decimal `json:"high_52_weeks"`
	Low52Weeks        decimal.Decimal `json:"low_52_weeks"`
	MarketCap         decimal.Decimal `json:"market_cap"`
	PERatio           decimal.Decimal `json:"pe_ratio"`
	PBRatio           decimal.Decimal `json:"pb_ratio"`
	DividendYield     decimal.Decimal `json:"dividend_yield"`
	SharesOutstanding decimal.Decimal `json:"shares_outstanding"`
}

type EarningsEPS struct {
	Estimate decimal.Decimal `json:"estimate"`
	Actual   decimal.Decimal `json:"actual"`
}

type EarningsReport struct {
	Date     string `json:"date"`
	Timing   string `json:"timing"`
	Verified bool   `json:"verified"`
}

type EarningsCall struct {
	Datetime     exchange.RemoteTime `json:"datetime"`
	BroadcastURL string              `json:"broadcast_url"`
	ReplayURL    string              `json:"replay_url"`
}

type Earnings struct {
	Symbol     string `json:"symbol"`
	Instrument string `json:"instrument"`
	Year       int    `json:"year"`
	Quarter    int    `json:"quarter"`

	EPS    EarningsEPS     `json:"eps"`
	Report *EarningsReport `json:"report"`
	Call   *EarningsCall   `json:"call"`
}

type RatingsSummary struct {
	NumBuyRatings  int64 `json:"num_buy_ratings"`
	NumHoldRatings int64 `json:"num_hold_ratings"`
	NumSellRatings int64 `json:"num_sell_ratings"`
}

type Rating struct {
	PublishedAt exchange.RemoteTime `json:"published_at"`
	Type        string              `json:"type"`
	Text        string              `json:"text"`
}

type Ratings struct {
	APIStatus

	InstrumentID       string              `json:"instrument_id"`
	Summary            *RatingsSummary     `json:"summary"`
	Ratings            []*Rating           `json:"ratings"`
	RatingsPublishedAt exchange.RemoteTime `json:"ratings_published_at"`
}

type NewsArticle struct {
	UUID        string              `json:"uuid"`
	URL         string              `json:"url"`
	Title       string              `json:"title"`
	Source      string              `json:"source"`
	Summary     string              `json:"summary"`
	PublishedAt exchange.RemoteTime `json:"published_at"`
}

type SimilarInstrument struct {
	InstrumentID string `json:"instrument_id"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
}

type Similar struct {
	APIStatus

	Similar []*SimilarInstrument `json:"similar"`
}

type Tag struct {
	APIStatus

	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Instruments []string `json:"instruments"`
}

type EquityFrame struct {
	BeginsAt exchange.RemoteTime `json:"begins_at"`
	Session  string              `json:"session"`

	OpenEquity          decimal.Decimal `json:"open_equity"`
	CloseEquity         decimal.Decimal `json:"close_equity"`
	AdjustedOpenEquity  decimal.Decimal `json:"adjusted_open_equity"`
	AdjustedCloseEquity decimal.Decimal `json:"adjusted_close_equity"`
	NetReturn           decimal.Decimal `json:"net_return"`
}

type PortfolioHistoricals struct {
	APIStatus

	Bounds   string `json:"bounds"`
	Interval string `json:"interval"`
	Span     string `json:"span"`

	TotalReturn       decimal.Decimal `json:"total_return"`
	EquityHistoricals []*EquityFrame  `json:"equity_historicals"`
}
