// Copyright (c) 2025 BVK Chaitanya

// Package algo has simple trading algorithms for the backtest and live
// commands.
package algo

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/bvk/tradinhood/trader"
	"github.com/shopspring/decimal"
)

// Params holds algorithm parameters as named strings, typically from a
// config file.
type Params map[string]string

func (p Params) getDecimal(key string, def decimal.Decimal) (decimal.Decimal, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parameter %q value %q is not a number: %w", key, v, os.ErrInvalid)
	}
	return d, nil
}

func (p Params) getInt(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %q value %q is not an integer: %w", key, v, os.ErrInvalid)
	}
	return n, nil
}

var registry = map[string]func(Params) (trader.Algorithm, error){
	"hold":      func(p Params) (trader.Algorithm, error) { return NewBuyAndHold(p) },
	"crossover": func(p Params) (trader.Algorithm, error) { return NewCrossover(p) },
}

// Names returns the names of all algorithms.
func Names() []string {
	var names []string
	for k := range registry {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// New creates an algorithm by name.
func New(name string, params Params) (trader.Algorithm, error) {
	create, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("algorithm %q is not known: %w", name, os.ErrNotExist)
	}
	return create(params)
}
