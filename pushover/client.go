// Copyright (c) 2023 BVK Chaitanya

// Package pushover sends trading notifications to the Pushover mobile app.
package pushover

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultURL = "https://api.pushover.net/1/messages.json"

type Keys struct {
	ApplicationKey string `json:"application_key" yaml:"application_key"`
	UserKey        string `json:"user_key" yaml:"user_key"`
}

// KeysFromEnv reads the keys from PUSHOVER_APP_KEY and PUSHOVER_USER_KEY
// environment variables. It returns nil when the application key is not set.
func KeysFromEnv() *Keys {
	app := os.Getenv("PUSHOVER_APP_KEY")
	if len(app) == 0 {
		return nil
	}
	return &Keys{ApplicationKey: app, UserKey: os.Getenv("PUSHOVER_USER_KEY")}
}

func (v *Keys) Check() error {
	if len(v.ApplicationKey) == 0 {
		return fmt.Errorf("application key cannot be empty")
	}
	if len(v.UserKey) == 0 {
		return fmt.Errorf("user key cannot be empty")
	}
	return nil
}

type Options struct {
	// URL overrides the messages api endpoint.
	URL string

	HttpClientTimeout time.Duration
}

func (v *Options) setDefaults() {
	if v.URL == "" {
		v.URL = defaultURL
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
}

type Client struct {
	opts       Options
	keys       Keys
	httpClient *http.Client
}

func New(keys *Keys, opts *Options) (*Client, error) {
	if err := keys.Check(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	c := &Client{
		opts:       *opts,
		keys:       *keys,
		httpClient: &http.Client{Timeout: opts.HttpClientTimeout},
	}
	return c, nil
}

func (c *Client) SendMessage(ctx context.Context, at time.Time, msg string) error {
	type Message struct {
		Token     string `json:"token"`
		User      string `json:"user"`
		Message   string `json:"message"`
		Timestamp int64  `json:"timestamp"`
	}
	m := &Message{
		Token:     c.keys.ApplicationKey,
		User:      c.keys.UserKey,
		Timestamp: at.Unix(),
		Message:   msg,
	}
	var msgbuf bytes.Buffer
	if err := json.NewEncoder(&msgbuf).Encode(m); err != nil {
		return fmt.Errorf("could not json-encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, &msgbuf)
	if err != nil {
		return fmt.Errorf("could not create post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not perform post request: %w", err)
	}
	defer resp.Body.Close()

	var r struct {
		Status  int      `json:"status"`
		Request string   `json:"request"`
		Errors  []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return fmt.Errorf("could not json-decode response for http-status %d: %w", resp.StatusCode, err)
	}
	if r.Status != 1 {
		if len(r.Errors) != 0 {
			return fmt.Errorf("send failed with http-status %d: %w", resp.StatusCode, errors.New(r.Errors[0]))
		}
		return fmt.Errorf("send failed with http-status %d and response status %d", resp.StatusCode, r.Status)
	}
	return nil
}
