// Copyright (c) 2025 BVK Chaitanya

package robinhood

import (
	"fmt"
	"os"
	"time"

	"github.com/bvk/tradinhood/robinhood/internal"
)

type Options struct {
	// APIURL, NummusURL and DoraURL override the default brokerage
	// endpoints.
	APIURL    string
	NummusURL string
	DoraURL   string

	HttpClientTimeout time.Duration

	// RequestsPerSecond limits the rate of api requests.
	RequestsPerSecond float64

	// AccountNumber and NummusAccountID, when non-empty, skip the account
	// discovery requests during the client initialization.
	AccountNumber   string
	NummusAccountID string

	// OrderPages is the default number of order history pages fetched by
	// QueryOrders.
	OrderPages int
}

func (v *Options) setDefaults() {
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
	if v.OrderPages == 0 {
		v.OrderPages = 3
	}
}

// Check validates the options.
func (v *Options) Check() error {
	if v.OrderPages < 0 {
		return fmt.Errorf("order pages cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}

func (v *Options) internalOptions() *internal.Options {
	return &internal.Options{
		APIURL:            v.APIURL,
		NummusURL:         v.NummusURL,
		DoraURL:           v.DoraURL,
		HttpClientTimeout: v.HttpClientTimeout,
		RequestsPerSecond: v.RequestsPerSecond,
	}
}
