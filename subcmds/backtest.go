// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bvk/tradinhood/algo"
	"github.com/bvk/tradinhood/dataset"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/bvk/tradinhood/tradelog"
	"github.com/bvk/tradinhood/trader"
	"github.com/visvasity/cli"
)

type Backtest struct {
	cmdutil.ConfigFlags
	cmdutil.ClientFlags
	cmdutil.DBFlags
	cmdutil.LogFlags

	dataset    string
	cash       string
	startIndex int
	seed       uint64
}

func (c *Backtest) Purpose() string {
	return "Runs a trading algorithm over historical candles"
}

func (c *Backtest) Description() string {
	return `

Command "backtest" runs an algorithm over a dataset, one step per candle. Asset
price at every step is picked randomly between the open and close prices of
the candle, so use the same -seed to repeat a run. Datasets saved with the
"dataset fetch" command are used when a dataset name is configured; otherwise
candles are fetched from the brokerage.

Step records are written to the trade log file when it is configured.

EXAMPLES

    $ tradinhood backtest -config sma.yaml -seed 7

    $ tradinhood backtest -algorithm hold -symbols AAPL,MSFT -resolution 1w

`
}

func (c *Backtest) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("backtest", flag.ContinueOnError)
	c.ConfigFlags.SetFlags(fset)
	c.ClientFlags.SetFlags(fset)
	c.DBFlags.SetFlags(fset)
	c.LogFlags.SetFlags(fset)
	fset.StringVar(&c.dataset, "dataset", "", "overrides the saved dataset name")
	fset.StringVar(&c.cash, "cash", "", "overrides the initial cash")
	fset.IntVar(&c.startIndex, "start-index", 0, "overrides the first step index")
	fset.Uint64Var(&c.seed, "seed", 0, "overrides the random seed for the prices")
	return "backtest", fset, cli.CmdFunc(c.run)
}

func (c *Backtest) loadDataset(ctx context.Context, cfg *cmdutil.Config) (*dataset.Dataset, error) {
	if len(cfg.Dataset) != 0 {
		db, closer, err := c.DBFlags.GetDatabase(ctx)
		if err != nil {
			return nil, err
		}
		defer closer()
		return dataset.Load(ctx, db, cfg.Dataset)
	}

	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var sources []dataset.Source
	for _, s := range cfg.Symbols {
		asset, err := client.Lookup(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("could not lookup symbol %q: %w", s, err)
		}
		sources = append(sources, asset)
	}
	resolution := cfg.Resolution
	if len(resolution) == 0 {
		resolution = "1d"
	}
	return dataset.FromAssets(ctx, sources, resolution)
}

func (c *Backtest) run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer c.LogFlags.Setup()()

	cfg, err := c.ConfigFlags.Config()
	if err != nil {
		return err
	}
	if len(c.dataset) != 0 {
		cfg.Dataset = c.dataset
	}
	if len(c.cash) != 0 {
		cfg.Cash = c.cash
	}
	if c.startIndex != 0 {
		cfg.StartIndex = c.startIndex
	}
	if c.seed != 0 {
		cfg.Seed = c.seed
	}
	if err := cfg.Check(); err != nil {
		return err
	}

	algorithm, err := algo.New(cfg.Algorithm, cfg.Params)
	if err != nil {
		return err
	}

	ds, err := c.loadDataset(ctx, cfg)
	if err != nil {
		return err
	}

	opts := &trader.BacktestOptions{
		Run:        cfg.Run,
		Cash:       cfg.CashAmount(),
		StartIndex: cfg.StartIndex,
		Seed:       cfg.Seed,
	}
	if len(cfg.TradeLog) != 0 {
		store, err := c.openTradeLog(ctx, cfg.TradeLog)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Recorder = store
	}

	b, err := trader.NewBacktester(ds, cfg.Symbols, opts)
	if err != nil {
		return err
	}
	if err := b.Run(ctx, algorithm); err != nil {
		return err
	}
	return printSummary(b.Log())
}

func (c *Backtest) openTradeLog(ctx context.Context, file string) (*tradelog.Store, error) {
	fpath, err := c.DBFlags.ResolvePath(file)
	if err != nil {
		return nil, err
	}
	return tradelog.Open(ctx, fpath)
}
