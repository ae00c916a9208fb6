// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bvk/tradinhood/robinhood/internal"
	"github.com/shopspring/decimal"
)

// Fundamentals holds the company profile and the trading statistics of a
// stock.
type Fundamentals struct {
	Description  string
	Sector       string
	Industry     string
	CEO          string
	Headquarters string
	NumEmployees int64
	YearFounded  int

	Open              decimal.Decimal
	High              decimal.Decimal
	Low               decimal.Decimal
	Volume            decimal.Decimal
	AverageVolume     decimal.Decimal
	High52Weeks       decimal.Decimal
	Low52Weeks        decimal.Decimal
	MarketCap         decimal.Decimal
	PERatio           decimal.Decimal
	PBRatio           decimal.Decimal
	DividendYield     decimal.Decimal
	SharesOutstanding decimal.Decimal
}

// Earnings is a past or an upcoming quarterly earnings report. ActualEPS is
// zero for the upcoming reports.
type Earnings struct {
	Year    int
	Quarter int

	EstimatedEPS decimal.Decimal
	ActualEPS    decimal.Decimal

	ReportDate   string
	ReportTiming string
	Verified     bool

	CallTime time.Time
	CallURL  string
}

type RatingSummary struct {
	Buy, Hold, Sell int64

	PublishedAt time.Time
}

func (v *RatingSummary) Total() int64 {
	return v.Buy + v.Hold + v.Sell
}

// Percent returns n as a percentage of all ratings, which is zero when there
// are no ratings.
func (v *RatingSummary) Percent(n int64) decimal.Decimal {
	total := v.Total()
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(n * 100).Div(decimal.NewFromInt(total))
}

type Rating struct {
	Type string
	Text string

	PublishedAt time.Time
}

type NewsArticle struct {
	Title   string
	Source  string
	Summary string
	URL     string

	PublishedAt time.Time
}

// EquityPoint is one interval of the account's portfolio value history.
type EquityPoint struct {
	BeginsAt time.Time
	Session  string

	OpenEquity          decimal.Decimal
	CloseEquity         decimal.Decimal
	AdjustedOpenEquity  decimal.Decimal
	AdjustedCloseEquity decimal.Decimal
	NetReturn           decimal.Decimal
}

func (s *Stock) Fundamentals(ctx context.Context) (*Fundamentals, error) {
	v, err := s.client.client.GetFundamentals(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("could not fetch fundamentals for %s: %w", s.symbol, err)
	}
	return &Fundamentals{
		Description:       v.Description,
		Sector:            v.Sector,
		Industry:          v.Industry,
		CEO:               v.CEO,
		Headquarters:      v.Headquarters,
		NumEmployees:      v.NumEmployees,
		YearFounded:       v.YearFounded,
		Open:              v.Open,
		High:              v.High,
		Low:               v.Low,
		Volume:            v.Volume,
		AverageVolume:     v.AverageVolume,
		High52Weeks:       v.High52Weeks,
		Low52Weeks:        v.Low52Weeks,
		MarketCap:         v.MarketCap,
		PERatio:           v.PERatio,
		PBRatio:           v.PBRatio,
		DividendYield:     v.DividendYield,
		SharesOutstanding: v.SharesOutstanding,
	}, nil
}

// Earnings returns the earnings history and the estimates from the first
// three pages of results.
func (s *Stock) Earnings(ctx context.Context) ([]*Earnings, error) {
	rows, err := s.client.client.ListEarnings(ctx, s.url, 3)
	if err != nil {
		return nil, fmt.Errorf("could not fetch earnings for %s: %w", s.symbol, err)
	}
	earnings := make([]*Earnings, 0, len(rows))
	for _, r := range rows {
		e := &Earnings{
			Year:         r.Year,
			Quarter:      r.Quarter,
			EstimatedEPS: r.EPS.Estimate,
			ActualEPS:    r.EPS.Actual,
		}
		if r.Report != nil {
			e.ReportDate = r.Report.Date
			e.ReportTiming = r.Report.Timing
			e.Verified = r.Report.Verified
		}
		if r.Call != nil {
			e.CallTime = r.Call.Datetime.Time
			e.CallURL = r.Call.BroadcastURL
		}
		earnings = append(earnings, e)
	}
	return earnings, nil
}

func toRatingSummary(v *internal.Ratings) *RatingSummary {
	s := &RatingSummary{PublishedAt: v.RatingsPublishedAt.Time}
	if v.Summary != nil {
		s.Buy = v.Summary.NumBuyRatings
		s.Hold = v.Summary.NumHoldRatings
		s.Sell = v.Summary.NumSellRatings
	}
	return s
}

// Ratings returns the analyst rating counts and the individual ratings of
// the stock.
func (s *Stock) Ratings(ctx context.Context) (*RatingSummary, []*Rating, error) {
	v, err := s.client.client.GetRatings(ctx, s.id)
	if err != nil {
		return nil, nil, fmt.Errorf("could not fetch ratings for %s: %w", s.symbol, err)
	}
	var ratings []*Rating
	for _, r := range v.Ratings {
		ratings = append(ratings, &Rating{Type: r.Type, Text: r.Text, PublishedAt: r.PublishedAt.Time})
	}
	return toRatingSummary(v), ratings, nil
}

// News returns the recent news articles about the stock from at most the
// given number of pages.
func (s *Stock) News(ctx context.Context, pages int) ([]*NewsArticle, error) {
	rows, err := s.client.client.ListNews(ctx, s.symbol, pages)
	if err != nil {
		return nil, fmt.Errorf("could not fetch news for %s: %w", s.symbol, err)
	}
	news := make([]*NewsArticle, 0, len(rows))
	for _, r := range rows {
		news = append(news, &NewsArticle{
			Title:       r.Title,
			Source:      r.Source,
			Summary:     r.Summary,
			URL:         r.URL,
			PublishedAt: r.PublishedAt.Time,
		})
	}
	return news, nil
}

// Similar returns the stocks that the brokerage recommends as similar to
// this one.
func (s *Stock) Similar(ctx context.Context) ([]*Stock, error) {
	v, err := s.client.client.GetSimilar(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("could not fetch similar stocks for %s: %w", s.symbol, err)
	}
	var stocks []*Stock
	for _, item := range v.Similar {
		stock, err := s.client.StockByID(ctx, item.InstrumentID)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, stock)
	}
	return stocks, nil
}

// StocksByTag returns the display name and the stocks of a brokerage tag
// (ex: top-movers, 100-most-popular).
func (c *Client) StocksByTag(ctx context.Context, tag string) (string, []*Stock, error) {
	if tag == "" {
		return "", nil, fmt.Errorf("tag cannot be empty: %w", os.ErrInvalid)
	}
	v, err := c.client.GetTag(ctx, tag)
	if err != nil {
		return "", nil, fmt.Errorf("could not fetch tag %q: %w", tag, err)
	}
	var stocks []*Stock
	for _, u := range v.Instruments {
		stock, err := c.StockByURL(ctx, u)
		if err != nil {
			return "", nil, err
		}
		stocks = append(stocks, stock)
	}
	return v.Name, stocks, nil
}

// BulkRatings returns the rating summaries of multiple stocks in a single
// request, keyed by the stock symbol. Stocks without ratings are absent.
func (c *Client) BulkRatings(ctx context.Context, stocks []*Stock) (map[string]*RatingSummary, error) {
	if len(stocks) == 0 {
		return nil, fmt.Errorf("at least one stock is required: %w", os.ErrInvalid)
	}
	symbols := make(map[string]string)
	ids := make([]string, 0, len(stocks))
	for _, s := range stocks {
		ids = append(ids, s.id)
		symbols[s.id] = s.symbol
	}
	rows, err := c.client.ListRatings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("could not fetch stock ratings: %w", err)
	}
	result := make(map[string]*RatingSummary)
	for _, r := range rows {
		if symbol, ok := symbols[r.InstrumentID]; ok {
			result[symbol] = toRatingSummary(r)
		}
	}
	return result, nil
}

// PortfolioHistory returns the portfolio value history of the stock account
// with the given bounds (ex: trading), interval (ex: 5minute) and span (ex:
// day).
func (c *Client) PortfolioHistory(ctx context.Context, bounds, interval, span string) ([]*EquityPoint, error) {
	v, err := c.client.GetPortfolioHistoricals(ctx, c.accountNumber, bounds, interval, span)
	if err != nil {
		return nil, fmt.Errorf("could not fetch portfolio history: %w", err)
	}
	points := make([]*EquityPoint, 0, len(v.EquityHistoricals))
	for _, f := range v.EquityHistoricals {
		points = append(points, &EquityPoint{
			BeginsAt:            f.BeginsAt.Time,
			Session:             f.Session,
			OpenEquity:          f.OpenEquity,
			CloseEquity:         f.CloseEquity,
			AdjustedOpenEquity:  f.AdjustedOpenEquity,
			AdjustedCloseEquity: f.AdjustedCloseEquity,
			NetReturn:           f.NetReturn,
		})
	}
	return points, nil
}
