// Copyright (c) 2025 BVK Chaitanya

package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"
)

// candleRecord is the on-disk parquet schema. Prices are kept as decimal
// strings so that an export followed by an import is lossless.
type candleRecord struct {
	Symbol     string `parquet:"symbol"`
	Resolution string `parquet:"resolution"`
	Timestamp  int64  `parquet:"timestamp,timestamp(millisecond)"`
	Duration   int64  `parquet:"duration_ms"`
	Open       string `parquet:"open"`
	High       string `parquet:"high"`
	Low        string `parquet:"low"`
	Close      string `parquet:"close"`
	Volume     string `parquet:"volume"`
}

// ExportParquet writes all candles of the dataset into a parquet file, one
// row per timestamp and symbol in ascending time order.
func ExportParquet(file string, d *Dataset) error {
	var records []candleRecord
	for _, ts := range d.Dates() {
		for _, s := range d.symbols {
			c, ok := d.Get(ts, s)
			if !ok {
				continue
			}
			records = append(records, candleRecord{
				Symbol:     s,
				Resolution: d.resolution,
				Timestamp:  ts.UnixMilli(),
				Duration:   c.Duration.Milliseconds(),
				Open:       c.Open.String(),
				High:       c.High.String(),
				Low:        c.Low.String(),
				Close:      c.Close.String(),
				Volume:     c.Volume.String(),
			})
		}
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(file, records); err != nil {
		return fmt.Errorf("could not write parquet file %q: %w", file, err)
	}
	return nil
}

// ImportParquet reads a dataset written by ExportParquet. All rows must have
// the same resolution.
func ImportParquet(file string) (*Dataset, error) {
	records, err := parquet.ReadFile[candleRecord](file)
	if err != nil {
		return nil, fmt.Errorf("could not read parquet file %q: %w", file, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parquet file %q has no rows: %w", file, os.ErrInvalid)
	}

	d, err := New(records[0].Resolution)
	if err != nil {
		return nil, err
	}
	for i, r := range records {
		if r.Resolution != d.resolution {
			return nil, fmt.Errorf("row %d has resolution %q in a %s dataset: %w", i, r.Resolution, d.resolution, os.ErrInvalid)
		}
		c, err := r.candle()
		if err != nil {
			return nil, fmt.Errorf("row %d is invalid: %w", i, err)
		}
		d.Add(c.StartTime.Time, r.Symbol, c)
	}
	return d, nil
}

func (r *candleRecord) candle() (*gobs.Candle, error) {
	c := &gobs.Candle{
		StartTime: exchange.RemoteTime{Time: time.UnixMilli(r.Timestamp).UTC()},
		Duration:  time.Duration(r.Duration) * time.Millisecond,
	}
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&c.Open, r.Open},
		{&c.High, r.High},
		{&c.Low, r.Low},
		{&c.Close, r.Close},
		{&c.Volume, r.Volume},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return c, nil
}
