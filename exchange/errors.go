// Copyright (c) 2025 BVK Chaitanya

package exchange

import "errors"

var (
	// ErrAPI is returned when the brokerage api is unreachable or responds with
	// an error status, an error code or an unexpected payload.
	ErrAPI = errors.New("brokerage api error")

	ErrNotTradable = errors.New("asset is not tradable")
	ErrNoFund      = errors.New("insufficient funds")
	ErrNotFound    = errors.New("asset not found")
)
