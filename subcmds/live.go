// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bvk/tradinhood/algo"
	"github.com/bvk/tradinhood/gobs"
	"github.com/bvk/tradinhood/kvutil"
	"github.com/bvk/tradinhood/pushover"
	"github.com/bvk/tradinhood/subcmds/cmdutil"
	"github.com/bvk/tradinhood/telegram"
	"github.com/bvk/tradinhood/tradelog"
	"github.com/bvk/tradinhood/trader"
	"github.com/bvkgo/kv"
	"github.com/nightlyone/lockfile"
	"github.com/visvasity/cli"
)

var (
	_ trader.Messenger = (*telegram.Client)(nil)
	_ trader.Messenger = (*pushover.Client)(nil)
)

type Live struct {
	cmdutil.ConfigFlags
	cmdutil.ClientFlags
	cmdutil.DBFlags
	cmdutil.LogFlags

	until     string
	pollDelay time.Duration
	noWait    bool
	notify    bool
}

func (c *Live) Purpose() string {
	return "Runs a trading algorithm against the brokerage in real time"
}

func (c *Live) Description() string {
	return `

Command "live" runs an algorithm with real orders, one step per resolution
interval. Orders placed in a step are polled every -poll-delay and are
cancelled when they are not complete by the end of the step, unless -no-wait
is set.

Only one live trader can run per data directory. Trader state is saved in the
database after every step and can be printed with the "state" command.

When notifications are enabled, messages are sent through telegram when the
TELEGRAM_BOT_TOKEN and TELEGRAM_OWNER environment variables (or the dotenv
file) identify a bot and the owner, and through pushover when the
PUSHOVER_APP_KEY and PUSHOVER_USER_KEY variables are set. Telegram users must
send a message to the bot once so that the bot learns their chat ids.

`
}

func (c *Live) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("live", flag.ContinueOnError)
	c.ConfigFlags.SetFlags(fset)
	c.ClientFlags.SetFlags(fset)
	c.DBFlags.SetFlags(fset)
	c.LogFlags.SetFlags(fset)
	fset.StringVar(&c.until, "until", "", "when non-empty, stops the trading at this RFC3339 time")
	fset.DurationVar(&c.pollDelay, "poll-delay", 0, "overrides the order state polling interval")
	fset.BoolVar(&c.noWait, "no-wait", false, "when true, does not wait for the orders to complete")
	fset.BoolVar(&c.notify, "notify", false, "when true, sends notifications through telegram")
	return "live", fset, cli.CmdFunc(c.run)
}

func (c *Live) config() (*cmdutil.Config, error) {
	cfg, err := c.ConfigFlags.Config()
	if err != nil {
		return nil, err
	}
	if len(c.until) != 0 {
		until, err := time.Parse(time.RFC3339, c.until)
		if err != nil {
			return nil, fmt.Errorf("could not parse until time %q: %w", c.until, err)
		}
		cfg.Until = until
	}
	if c.pollDelay != 0 {
		cfg.PollDelay = c.pollDelay
	}
	if c.noWait {
		cfg.NoWait = true
	}
	if c.notify {
		cfg.Notify = true
	}
	if len(cfg.Run) == 0 {
		cfg.Run = cfg.Algorithm
	}
	return cfg, nil
}

func (c *Live) run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer c.LogFlags.Setup()()

	cfg, err := c.config()
	if err != nil {
		return err
	}
	algorithm, err := algo.New(cfg.Algorithm, cfg.Params)
	if err != nil {
		return err
	}

	dataDir, err := c.DBFlags.DataDir()
	if err != nil {
		return err
	}
	lockPath := filepath.Join(dataDir, "live.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := flock.TryLock(); err != nil {
		return fmt.Errorf("could not get lock on file %q (is another live trader running?): %w", lockPath, err)
	}
	defer flock.Unlock()

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	client, err := c.ClientFlags.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	opts := &trader.LiveOptions{
		Run:        cfg.Run,
		Algorithm:  cfg.Algorithm,
		Resolution: cfg.Resolution,
		Until:      cfg.Until,
		NoWait:     cfg.NoWait,
		PollDelay:  cfg.PollDelay,
		Database:   db,
	}

	if len(cfg.TradeLog) != 0 {
		fpath, err := c.DBFlags.ResolvePath(cfg.TradeLog)
		if err != nil {
			return err
		}
		store, err := tradelog.Open(ctx, fpath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Recorder = store
	}

	if cfg.Notify {
		messengers, closer, err := c.messengers(ctx, db, cfg.Run)
		if err != nil {
			return err
		}
		defer closer()
		opts.Messenger = messengers
	}

	live, err := trader.NewLive(client, cfg.Symbols, opts)
	if err != nil {
		return err
	}

	slog.Info("starting live trader", "run", cfg.Run, "algorithm", cfg.Algorithm, "symbols", cfg.Symbols, "data-dir", dataDir)
	if err := live.Run(ctx, algorithm); err != nil {
		if ctx.Err() == nil {
			return err
		}
		slog.Info("live trader is stopped", "run", cfg.Run, "cause", err)
	}
	return printSummary(live.Log())
}

// messengers creates the telegram and pushover messengers configured in the
// environment. Client creation loads the dotenv file before this.
func (c *Live) messengers(ctx context.Context, db kv.Database, run string) (_ trader.Messengers, _ func(), status error) {
	var ms trader.Messengers
	var closers []func()
	closer := func() {
		for _, f := range closers {
			f()
		}
	}
	defer func() {
		if status != nil {
			closer()
		}
	}()

	if secrets := telegram.SecretsFromEnv(); secrets != nil {
		bot, err := telegram.New(ctx, db, secrets)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { bot.Close() })

		statusCmd := func(ctx context.Context, _ []string) error {
			state, err := trader.LoadState(ctx, db, run)
			if err != nil {
				return err
			}
			return printState(cli.Stdout(ctx), state)
		}
		if err := bot.AddCommand(ctx, "status", "Prints the last trading step", statusCmd); err != nil {
			return nil, nil, err
		}
		ms = append(ms, bot)
	}

	if keys := pushover.KeysFromEnv(); keys != nil {
		client, err := pushover.New(keys, nil)
		if err != nil {
			return nil, nil, err
		}
		ms = append(ms, client)
	}

	if len(ms) == 0 {
		return nil, nil, fmt.Errorf("notifications need TELEGRAM_BOT_TOKEN or PUSHOVER_APP_KEY environment variables")
	}
	return ms, closer, nil
}

func printState(w io.Writer, state *gobs.TraderState) error {
	fmt.Fprintf(w, "Run: %s\n", state.Run)
	fmt.Fprintf(w, "Algorithm: %s @%s\n", state.Algorithm, state.Resolution)
	fmt.Fprintf(w, "Symbols: %s\n", strings.Join(state.Symbols, ","))
	if s := state.LastStep; s != nil {
		fmt.Fprintf(w, "Last Step: %s\n", s.Time.Time.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Cash: %s\n", s.Cash.StringFixed(2))
		fmt.Fprintf(w, "Value: %s\n", s.PortfolioValue.StringFixed(2))
		for _, k := range sortedKeys(s.Owned) {
			fmt.Fprintf(w, "Owned %s: %s @ %s\n", k, s.Owned[k], s.Prices[k].StringFixed(2))
		}
	}
	for _, o := range state.Orders {
		fmt.Fprintf(w, "Order %s: %s %s %s %s\n", o.ServerOrderID, o.Side, o.Quantity, o.Symbol, o.State)
	}
	return nil
}

type State struct {
	cmdutil.DBFlags

	asJSON bool
}

func (c *State) Purpose() string {
	return "Prints the last saved state of all or selected live trader runs"
}

func (c *State) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("state", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.BoolVar(&c.asJSON, "json", false, "when true, prints the state in json format")
	return "state", fset, cli.CmdFunc(c.run)
}

func (c *State) run(ctx context.Context, args []string) error {
	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	var states []*gobs.TraderState
	load := func(ctx context.Context, r kv.Reader) error {
		if len(args) == 0 {
			begin, end := kvutil.PathRange(trader.StateKeyspace)
			collect := func(ctx context.Context, key string, state *gobs.TraderState) error {
				states = append(states, state)
				return nil
			}
			return kvutil.Ascend(ctx, r, begin, end, collect)
		}
		for _, run := range args {
			state, err := trader.LoadStateFrom(ctx, r, run)
			if err != nil {
				return fmt.Errorf("could not load state for run %q: %w", run, err)
			}
			states = append(states, state)
		}
		return nil
	}
	if err := kv.WithReader(ctx, db, load); err != nil {
		return err
	}

	if c.asJSON {
		return printJSON(os.Stdout, states)
	}
	for i, state := range states {
		if i > 0 {
			fmt.Println()
		}
		if err := printState(os.Stdout, state); err != nil {
			return err
		}
	}
	return nil
}
