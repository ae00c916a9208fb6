// Copyright (c) 2025 BVK Chaitanya

package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bvk/tradinhood/ctxutil"
	"github.com/bvk/tradinhood/exchange"
	"golang.org/x/time/rate"
)

type Client struct {
	opts Options

	apiURL    *url.URL
	nummusURL *url.URL
	doraURL   *url.URL

	token string

	client http.Client

	limiter *rate.Limiter
}

// New returns a client that authenticates with the given bearer token. Token
// is only inspected locally for an expiry time and is never refreshed.
func New(token string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if err := checkTokenExpiry(token, time.Now()); err != nil {
		return nil, err
	}

	apiURL, _ := url.Parse(opts.APIURL)
	nummusURL, _ := url.Parse(opts.NummusURL)
	doraURL, _ := url.Parse(opts.DoraURL)

	c := &Client{
		opts:      *opts,
		apiURL:    apiURL,
		nummusURL: nummusURL,
		doraURL:   doraURL,
		token:     token,
		client: http.Client{
			Timeout: opts.HttpClientTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
	return c, nil
}

// APIPath returns an url under the main api endpoint. Brokerage paths always
// end with a slash.
func (c *Client) APIPath(elems ...string) *url.URL {
	return joinPath(c.apiURL, elems...)
}

// NummusPath returns an url under the currency pairs endpoint.
func (c *Client) NummusPath(elems ...string) *url.URL {
	return joinPath(c.nummusURL, elems...)
}

// DoraPath returns an url under the instrument recommendations endpoint.
func (c *Client) DoraPath(elems ...string) *url.URL {
	return joinPath(c.doraURL, elems...)
}

func joinPath(base *url.URL, elems ...string) *url.URL {
	u := base.JoinPath(elems...)
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u
}

func (c *Client) do(ctx context.Context, method string, addrURL *url.URL, body []byte) (*http.Response, error) {
	var payload io.Reader
	if body != nil {
		payload = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, addrURL.String(), payload)
	if err != nil {
		slog.Error("could not create http request object with context", "method", method, "url", addrURL, "err", err)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	s := time.Now()
	resp, err := c.client.Do(req)
	if d := time.Since(s); d > c.opts.HttpClientTimeout {
		slog.Warn(fmt.Sprintf("%s request took %s which is more than the http client timeout %s", method, d, c.opts.HttpClientTimeout))
	}
	return resp, err
}

// retryAfter returns the wait time for a retryable response status. Returns
// false if the response cannot be retried.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return time.Second, true
	case http.StatusTooManyRequests, http.StatusTeapot:
		timeout := time.Second
		if x := resp.Header.Get("Retry-After"); len(x) != 0 {
			if v, err := strconv.Atoi(x); err == nil && v >= 0 {
				timeout = time.Duration(v) * time.Second
			}
		}
		return timeout, true
	}
	return 0, false
}

func doJSON[PT *T, T any](ctx context.Context, c *Client, method string, addrURL *url.URL, request any, response PT) error {
	var body []byte
	if request != nil {
		data, err := json.Marshal(request)
		if err != nil {
			slog.Error("could not marshal request body to json", "url", addrURL, "err", err)
			return err
		}
		body = data
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.do(ctx, method, addrURL, body)
		if err != nil {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			slog.Error("could not perform http request", "method", method, "url", addrURL, "err", err)
			return fmt.Errorf("could not perform %s %s: %v: %w", method, addrURL.Path, err, exchange.ErrAPI)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			if timeout, ok := retryAfter(resp); ok && attempt < c.opts.MaxRetries {
				slog.Warn("http request returned a retryable status code", "method", method, "url", addrURL, "status-code", resp.StatusCode, "retry-after", timeout)
				if err := ctxutil.Sleep(ctx, timeout); err != nil {
					return err
				}
				continue
			}

			slog.Error("http request is unsuccessful", "method", method, "url", addrURL, "status", resp.StatusCode, "response", string(data))
			status := new(APIStatus)
			if err := json.Unmarshal(data, status); err == nil && status.Err() != nil {
				return fmt.Errorf("http %s %s returned %d: %w", method, addrURL.Path, resp.StatusCode, status.Err())
			}
			return fmt.Errorf("http %s %s returned %d: %w", method, addrURL.Path, resp.StatusCode, exchange.ErrAPI)
		}

		err = json.NewDecoder(resp.Body).Decode(response)
		resp.Body.Close()
		if err != nil && !errors.Is(err, io.EOF) {
			slog.Error("could not decode response to json", "method", method, "url", addrURL, "err", err)
			return fmt.Errorf("could not decode %s %s response: %v: %w", method, addrURL.Path, err, exchange.ErrAPI)
		}
		if v, ok := any(response).(interface{ Err() error }); ok {
			if err := v.Err(); err != nil {
				return err
			}
		}
		return nil
	}
}

func getJSON[PT *T, T any](ctx context.Context, c *Client, addrURL *url.URL, response PT) error {
	return doJSON(ctx, c, http.MethodGet, addrURL, nil, response)
}

func postJSON[PT *T, T any](ctx context.Context, c *Client, addrURL *url.URL, request any, response PT) error {
	if request == nil {
		request = struct{}{}
	}
	return doJSON(ctx, c, http.MethodPost, addrURL, request, response)
}

// getPages follows the next links of a paginated response for at most the
// given number of pages. Non-positive page count fetches all pages.
func getPages[T any](ctx context.Context, c *Client, addrURL *url.URL, pages int) ([]*T, error) {
	var results []*T
	next := addrURL
	for i := 0; next != nil && (pages <= 0 || i < pages); i++ {
		page := new(Page[T])
		if err := getJSON(ctx, c, next, page); err != nil {
			return nil, err
		}
		results = append(results, page.Results...)

		next = nil
		if page.Next != "" {
			u, err := url.Parse(page.Next)
			if err != nil {
				return nil, fmt.Errorf("could not parse next page url %q: %v: %w", page.Next, err, exchange.ErrAPI)
			}
			next = u
		}
	}
	return results, nil
}
