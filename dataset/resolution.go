// Copyright (c) 2025 BVK Chaitanya

package dataset

import (
	"fmt"
	"os"
	"slices"
	"time"
)

var resolutions = map[string]time.Duration{
	"15s": 15 * time.Second,
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"1h":  time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// Resolutions returns the supported dataset resolutions ordered by their
// durations.
func Resolutions() []string {
	var names []string
	for k := range resolutions {
		names = append(names, k)
	}
	slices.SortFunc(names, func(a, b string) int {
		return int(resolutions[a] - resolutions[b])
	})
	return names
}

// Duration returns the step duration for a resolution name.
func Duration(resolution string) (time.Duration, error) {
	d, ok := resolutions[resolution]
	if !ok {
		return 0, fmt.Errorf("resolution %q is not supported: %w", resolution, os.ErrInvalid)
	}
	return d, nil
}

// historySpans maps resolutions to the brokerage's history interval and span
// parameters. Not every resolution has an equivalent.
var historySpans = map[string][2]string{
	"15s": {"15second", "hour"},
	"5m":  {"5minute", "day"},
	"1d":  {"day", "year"},
	"1w":  {"week", "5year"},
}

// HistorySpan returns the history interval and span for the resolution.
func HistorySpan(resolution string) (interval, span string, err error) {
	if _, err := Duration(resolution); err != nil {
		return "", "", err
	}
	v, ok := historySpans[resolution]
	if !ok {
		return "", "", fmt.Errorf("resolution %q has no brokerage history equivalent: %w", resolution, os.ErrInvalid)
	}
	return v[0], v[1], nil
}
