// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bvk/tradinhood/robinhood"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Research struct {
	cmdutil.ClientFlags

	newsPages int
	asJSON    bool
}

func (c *Research) Purpose() string {
	return "Prints fundamentals, earnings, ratings, news and similar stocks of a stock"
}

func (c *Research) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("research", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.IntVar(&c.newsPages, "news-pages", 1, "number of news pages to fetch")
	fset.BoolVar(&c.asJSON, "json", false, "when true, prints the report in json format")
	return "research", fset, cli.CmdFunc(c.run)
}

type researchReport struct {
	Symbol       string
	Fundamentals *robinhood.Fundamentals
	Earnings     []*robinhood.Earnings
	Ratings      *robinhood.RatingSummary
	RatingTexts  []*robinhood.Rating
	News         []*robinhood.NewsArticle
	Similar      []string
}

func (c *Research) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one stock symbol argument")
	}

	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	stock, err := client.LookupStock(ctx, args[0])
	if err != nil {
		return fmt.Errorf("could not lookup stock %q: %w", args[0], err)
	}

	r := &researchReport{Symbol: stock.Code()}
	if r.Fundamentals, err = stock.Fundamentals(ctx); err != nil {
		return err
	}
	if r.Earnings, err = stock.Earnings(ctx); err != nil {
		return err
	}
	if r.Ratings, r.RatingTexts, err = stock.Ratings(ctx); err != nil {
		return err
	}
	if r.News, err = stock.News(ctx, c.newsPages); err != nil {
		return err
	}
	similar, err := stock.Similar(ctx)
	if err != nil {
		return err
	}
	for _, s := range similar {
		r.Similar = append(r.Similar, s.Code())
	}

	if c.asJSON {
		return printJSON(os.Stdout, r)
	}

	f := r.Fundamentals
	fmt.Printf("%s (%s, %s)\n", r.Symbol, f.Sector, f.Industry)
	fmt.Printf("Market cap %s, P/E %s, P/B %s, dividend yield %s\n", f.MarketCap, f.PERatio, f.PBRatio, f.DividendYield)
	fmt.Printf("52 week range %s - %s, average volume %s\n", f.Low52Weeks, f.High52Weeks, f.AverageVolume)
	fmt.Printf("Ratings: %d buy (%s%%), %d hold, %d sell\n", r.Ratings.Buy, r.Ratings.Percent(r.Ratings.Buy).StringFixed(1), r.Ratings.Hold, r.Ratings.Sell)
	if len(r.Similar) > 0 {
		fmt.Printf("Similar: %s\n", strings.Join(r.Similar, " "))
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "\nQuarter\tReport\tEstimate\tActual\n")
	for _, e := range r.Earnings {
		fmt.Fprintf(tw, "%dQ%d\t%s %s\t%s\t%s\n", e.Year, e.Quarter, e.ReportDate, e.ReportTiming, e.EstimatedEPS, e.ActualEPS)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Println()
	for _, n := range r.News {
		fmt.Printf("%s  %s: %s\n", n.PublishedAt.Local().Format(time.DateOnly), n.Source, n.Title)
	}
	return nil
}

type Tag struct {
	cmdutil.ClientFlags
}

func (c *Tag) Purpose() string {
	return "Prints the stocks under a brokerage tag (ex: 100-most-popular)"
}

func (c *Tag) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("tag", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "tag", fset, cli.CmdFunc(c.run)
}

func (c *Tag) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one tag argument")
	}

	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	name, stocks, err := client.StocksByTag(ctx, args[0])
	if err != nil {
		return err
	}
	ratings := make(map[string]*robinhood.RatingSummary)
	if len(stocks) > 0 {
		if ratings, err = client.BulkRatings(ctx, stocks); err != nil {
			return err
		}
	}

	fmt.Println(name)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Symbol\tBuy%%\tRatings\tName\n")
	for _, s := range stocks {
		buy, total := "-", int64(0)
		if r, ok := ratings[s.Code()]; ok {
			buy, total = r.Percent(r.Buy).StringFixed(1), r.Total()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Code(), buy, total, s.Name())
	}
	return tw.Flush()
}

type Portfolio struct {
	cmdutil.ClientFlags

	bounds   string
	interval string
	span     string
}

func (c *Portfolio) Purpose() string {
	return "Prints the portfolio value history of the stock account"
}

func (c *Portfolio) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("portfolio", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	fset.StringVar(&c.bounds, "bounds", "regular", "trading hours bounds (regular, extended or trading)")
	fset.StringVar(&c.interval, "interval", "day", "interval of every point (5minute, 10minute, hour, day or week)")
	fset.StringVar(&c.span, "span", "month", "time span of the history (day, week, month, 3month, year or all)")
	return "portfolio", fset, cli.CmdFunc(c.run)
}

func (c *Portfolio) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	points, err := client.PortfolioHistory(ctx, c.bounds, c.interval, c.span)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Time\tOpen\tClose\tReturn\n")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.BeginsAt.Local().Format(time.DateTime), p.OpenEquity.StringFixed(2), p.CloseEquity.StringFixed(2), p.NetReturn.StringFixed(2))
	}
	return tw.Flush()
}
