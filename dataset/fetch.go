// Copyright (c) 2025 BVK Chaitanya

package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bvk/tradinhood/exchange"
	"github.com/bvk/tradinhood/gobs"
)

// Source is an asset with brokerage price history.
type Source interface {
	Kind() exchange.AssetKind
	Code() string
	History(ctx context.Context, bounds, interval, span string) ([]*gobs.Candle, error)
}

// FromAsset fetches the price history of an asset at the resolution and
// returns it as a single symbol dataset keyed by the asset code.
func FromAsset(ctx context.Context, asset Source, resolution string) (*Dataset, error) {
	interval, span, err := HistorySpan(resolution)
	if err != nil {
		return nil, err
	}

	bounds := "regular"
	if asset.Kind() == exchange.CurrencyAsset {
		bounds = "24_7"
	}

	candles, err := asset.History(ctx, bounds, interval, span)
	if err != nil {
		return nil, fmt.Errorf("could not fetch %s history of %s: %w", resolution, asset.Code(), err)
	}

	d, err := New(resolution, asset.Code())
	if err != nil {
		return nil, err
	}
	for _, c := range candles {
		d.Add(c.StartTime.Time, asset.Code(), c)
	}
	slog.Debug("fetched price history", "symbol", asset.Code(), "resolution", resolution, "candles", len(candles))
	return d, nil
}

// FromAssets fetches and merges the price histories of multiple assets.
func FromAssets(ctx context.Context, assets []Source, resolution string) (*Dataset, error) {
	result, err := New(resolution)
	if err != nil {
		return nil, err
	}
	for _, a := range assets {
		d, err := FromAsset(ctx, a, resolution)
		if err != nil {
			return nil, err
		}
		if err := result.Merge(d); err != nil {
			return nil, err
		}
	}
	return result, nil
}
