// Copyright (c) 2025 BVK Chaitanya

package cmdutil

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bvk/tradinhood/algo"
	"github.com/bvk/tradinhood/dataset"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config describes a backtest or a live trading run. It is read from a YAML
// file, for example:
//
//	run: sma-daily
//	algorithm: sma
//	params:
//	  fast: "5"
//	  slow: "20"
//	symbols: [AAPL, BTC]
//	resolution: 1d
//	dataset: daily-2024
//	cash: "10000"
//	poll_delay: 5s
//	trade_log: trades.db
type Config struct {
	Run       string      `yaml:"run"`
	Algorithm string      `yaml:"algorithm"`
	Params    algo.Params `yaml:"params"`

	Symbols    []string `yaml:"symbols"`
	Resolution string   `yaml:"resolution"`

	// Dataset is the name of a saved dataset used by the backtests. Datasets
	// are fetched from the brokerage when it is empty.
	Dataset    string `yaml:"dataset"`
	Cash       string `yaml:"cash"`
	StartIndex int    `yaml:"start_index"`
	Seed       uint64 `yaml:"seed"`

	PollDelay time.Duration `yaml:"poll_delay"`
	NoWait    bool          `yaml:"no_wait"`
	Until     time.Time     `yaml:"until"`

	// TradeLog is the sqlite file receiving the step records. Relative paths
	// are resolved under the data directory.
	TradeLog string `yaml:"trade_log"`

	// Notify enables the telegram notifications for live runs.
	Notify bool `yaml:"notify"`
}

// LoadConfig reads a config file. An empty file name returns an empty
// config.
func LoadConfig(file string) (*Config, error) {
	c := new(Config)
	if len(file) == 0 {
		return c, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %q: %w", file, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("could not parse config file %q: %w", file, err)
	}
	return c, nil
}

func (c *Config) Check() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	if len(c.Algorithm) == 0 {
		return fmt.Errorf("algorithm name is required")
	}
	if len(c.Resolution) != 0 {
		if _, err := dataset.Duration(c.Resolution); err != nil {
			return err
		}
	}
	if len(c.Cash) != 0 {
		if _, err := decimal.NewFromString(c.Cash); err != nil {
			return fmt.Errorf("could not parse cash %q: %w", c.Cash, err)
		}
	}
	if c.StartIndex < 0 {
		return fmt.Errorf("start index cannot be negative")
	}
	if c.PollDelay < 0 {
		return fmt.Errorf("poll delay cannot be negative")
	}
	return nil
}

// CashAmount returns the initial backtest cash, which is zero when unset.
func (c *Config) CashAmount() decimal.Decimal {
	if len(c.Cash) == 0 {
		return decimal.Zero
	}
	return decimal.RequireFromString(c.Cash)
}

// ConfigFlags lets the command line override a config file.
type ConfigFlags struct {
	file string

	run        string
	algorithm  string
	symbols    string
	resolution string
	tradeLog   string
}

func (cf *ConfigFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&cf.file, "config", "", "path to a YAML run configuration file")
	fset.StringVar(&cf.run, "run", "", "overrides the run name")
	fset.StringVar(&cf.algorithm, "algorithm", "", "overrides the algorithm name")
	fset.StringVar(&cf.symbols, "symbols", "", "overrides the comma separated list of symbols")
	fset.StringVar(&cf.resolution, "resolution", "", "overrides the step resolution")
	fset.StringVar(&cf.tradeLog, "trade-log", "", "overrides the trade log file")
}

// Config loads the config file and applies the overrides.
func (cf *ConfigFlags) Config() (*Config, error) {
	c, err := LoadConfig(cf.file)
	if err != nil {
		return nil, err
	}
	if len(cf.run) != 0 {
		c.Run = cf.run
	}
	if len(cf.algorithm) != 0 {
		c.Algorithm = cf.algorithm
	}
	if len(cf.symbols) != 0 {
		c.Symbols = SplitSymbols(cf.symbols)
	}
	if len(cf.resolution) != 0 {
		c.Resolution = cf.resolution
	}
	if len(cf.tradeLog) != 0 {
		c.TradeLog = cf.tradeLog
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// SplitSymbols splits a comma separated list into upper case symbols.
func SplitSymbols(s string) []string {
	var symbols []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.ToUpper(strings.TrimSpace(v)); len(v) != 0 {
			symbols = append(symbols, v)
		}
	}
	return symbols
}
