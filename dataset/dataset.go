// Copyright (c) 2025 BVK Chaitanya

// Package dataset holds multi-symbol OHLCV price data at a fixed resolution.
package dataset

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
)

// Dataset maps timestamps to per-symbol candles. All timestamps are kept in
// UTC.
type Dataset struct {
	resolution string

	symbols []string

	data map[time.Time]map[string]*gobs.Candle
}

// New creates an empty dataset at the given resolution.
func New(resolution string, symbols ...string) (*Dataset, error) {
	if _, err := Duration(resolution); err != nil {
		return nil, err
	}
	d := &Dataset{
		resolution: resolution,
		data:       make(map[time.Time]map[string]*gobs.Candle),
	}
	d.addSymbols(symbols...)
	return d, nil
}

func (d *Dataset) addSymbols(symbols ...string) {
	for _, s := range symbols {
		if !slices.Contains(d.symbols, s) {
			d.symbols = append(d.symbols, s)
		}
	}
	slices.Sort(d.symbols)
}

func (d *Dataset) Resolution() string {
	return d.resolution
}

// Symbols returns the sorted list of symbols in the dataset.
func (d *Dataset) Symbols() []string {
	return slices.Clone(d.symbols)
}

// Add inserts or replaces the candle for a symbol at a timestamp.
func (d *Dataset) Add(ts time.Time, symbol string, c *gobs.Candle) {
	ts = ts.UTC()
	m, ok := d.data[ts]
	if !ok {
		m = make(map[string]*gobs.Candle)
		d.data[ts] = m
	}
	m[symbol] = c
	if !slices.Contains(d.symbols, symbol) {
		d.addSymbols(symbol)
	}
}

// Dates returns all timestamps in ascending order.
func (d *Dataset) Dates() []time.Time {
	dates := make([]time.Time, 0, len(d.data))
	for ts := range d.data {
		dates = append(dates, ts)
	}
	slices.SortFunc(dates, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return dates
}

// Get returns the candle of a symbol at the timestamp.
func (d *Dataset) Get(ts time.Time, symbol string) (*gobs.Candle, bool) {
	m, ok := d.data[ts.UTC()]
	if !ok {
		return nil, false
	}
	c, ok := m[symbol]
	return c, ok
}

// Len returns the number of timestamps.
func (d *Dataset) Len() int {
	return len(d.data)
}

func (d *Dataset) String() string {
	dates := d.Dates()
	if len(dates) == 0 {
		return fmt.Sprintf("dataset |%s| (@%s) [empty]", strings.Join(d.symbols, ","), d.resolution)
	}
	first, last := dates[0], dates[len(dates)-1]
	return fmt.Sprintf("dataset |%s| (@%s) [%s -> %s]", strings.Join(d.symbols, ","), d.resolution, first.Format(time.RFC3339), last.Format(time.RFC3339))
}

// Merge copies all candles of the other dataset into this dataset. Candles
// of the other dataset replace existing candles at the same timestamp and
// symbol. Datasets with different resolutions cannot be merged.
func (d *Dataset) Merge(other *Dataset) error {
	if d.resolution != other.resolution {
		return fmt.Errorf("cannot merge %s resolution data into %s resolution dataset: %w", other.resolution, d.resolution, os.ErrInvalid)
	}
	for ts, m := range other.data {
		for symbol, c := range m {
			d.Add(ts, symbol, c)
		}
	}
	d.addSymbols(other.symbols...)
	return nil
}

// Encode returns the persistent form of the dataset.
func (d *Dataset) Encode(name string) *gobs.Dataset {
	gv := &gobs.Dataset{
		Name:       name,
		Resolution: d.resolution,
		Symbols:    slices.Clone(d.symbols),
	}
	for _, ts := range d.Dates() {
		frame := &gobs.Frame{
			Time:    exchange.RemoteTime{Time: ts},
			Candles: make(map[string]*gobs.Candle),
		}
		for s, c := range d.data[ts] {
			frame.Candles[s] = c
		}
		gv.Frames = append(gv.Frames, frame)
	}
	return gv
}

// Decode creates a dataset from its persistent form.
func Decode(gv *gobs.Dataset) (*Dataset, error) {
	d, err := New(gv.Resolution, gv.Symbols...)
	if err != nil {
		return nil, err
	}
	for _, frame := range gv.Frames {
		for s, c := range frame.Candles {
			d.Add(frame.Time.Time, s, c)
		}
	}
	return d, nil
}
