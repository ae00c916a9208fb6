// Copyright (c) 2025 BVK Chaitanya

package internal

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

var (
	// APIURL is the base url for the stock and account endpoints.
	APIURL = url.URL{
		Scheme: "https",
		Host:   "api.robinhood.com",
		Path:   "/",
	}

	// NummusURL is the base url for the currency pair endpoints.
	NummusURL = url.URL{
		Scheme: "https",
		Host:   "nummus.robinhood.com",
		Path:   "/",
	}

	// DoraURL is the base url for the instrument recommendation endpoints.
	DoraURL = url.URL{
		Scheme: "https",
		Host:   "dora.robinhood.com",
		Path:   "/",
	}
)

type Options struct {
	// APIURL, NummusURL and DoraURL override the default service endpoints.
	APIURL    string
	NummusURL string
	DoraURL   string

	HttpClientTimeout time.Duration

	// MaxRetries limits the number of retries on throttled or bad-gateway
	// responses.
	MaxRetries int

	// RequestsPerSecond limits the rate of outgoing http requests.
	RequestsPerSecond float64
}

func (v *Options) setDefaults() {
	if v.APIURL == "" {
		v.APIURL = APIURL.String()
	}
	if v.NummusURL == "" {
		v.NummusURL = NummusURL.String()
	}
	if v.DoraURL == "" {
		v.DoraURL = DoraURL.String()
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
	if v.MaxRetries == 0 {
		v.MaxRetries = 5
	}
	if v.RequestsPerSecond == 0 {
		v.RequestsPerSecond = 5
	}
}

// Check validates the options.
func (v *Options) Check() error {
	for _, s := range []string{v.APIURL, v.NummusURL, v.DoraURL} {
		u, err := url.Parse(s)
		if err != nil {
			return fmt.Errorf("could not parse url %q: %w", s, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("url %q must be absolute: %w", s, os.ErrInvalid)
		}
	}
	if v.HttpClientTimeout < 0 {
		return fmt.Errorf("http client timeout cannot be negative: %w", os.ErrInvalid)
	}
	if v.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %w", os.ErrInvalid)
	}
	return nil
}
