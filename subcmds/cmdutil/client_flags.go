// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/bvk/tradinhood/robinhood"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// TokenEnv is the environment variable holding the brokerage access token.
const TokenEnv = "ROBINHOOD_TOKEN"

type ClientFlags struct {
	envFile string

	apiURL    string
	nummusURL string
	doraURL   string

	HTTPTimeout       time.Duration
	RequestsPerSecond float64
	OrderPages        int
}

func (cf *ClientFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&cf.envFile, "env-file", ".env", "path to a dotenv file with the ROBINHOOD_TOKEN and other secrets")
	fset.StringVar(&cf.apiURL, "api-url", "", "overrides the brokerage api endpoint")
	fset.StringVar(&cf.nummusURL, "nummus-url", "", "overrides the brokerage crypto api endpoint")
	fset.StringVar(&cf.doraURL, "dora-url", "", "overrides the brokerage similar instruments endpoint")
	fset.DurationVar(&cf.HTTPTimeout, "http-timeout", 30*time.Second, "http client timeout")
	fset.Float64Var(&cf.RequestsPerSecond, "requests-per-second", 0, "limits the api request rate when positive")
	fset.IntVar(&cf.OrderPages, "order-pages", 3, "number of order history pages to fetch")
}

// LoadEnv loads the dotenv file into the process environment. Variables
// already set in the environment are not overwritten. A missing file is not
// an error.
func (cf *ClientFlags) LoadEnv() error {
	if len(cf.envFile) == 0 {
		return nil
	}
	if err := godotenv.Load(cf.envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("could not load env file %q: %w", cf.envFile, err)
	}
	return nil
}

// Token returns the access token from the environment. When the token is not
// set and standard input is a terminal, it is read from the user without
// echo.
func (cf *ClientFlags) Token() (string, error) {
	if err := cf.LoadEnv(); err != nil {
		return "", err
	}
	if v := os.Getenv(TokenEnv); len(v) != 0 {
		return v, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("access token is not found in the %s environment variable", TokenEnv)
	}
	fmt.Fprintf(os.Stderr, "Access token: ")
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("could not read access token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if len(token) == 0 {
		return "", fmt.Errorf("access token cannot be empty")
	}
	return token, nil
}

func (cf *ClientFlags) options() *robinhood.Options {
	return &robinhood.Options{
		APIURL:            cf.apiURL,
		NummusURL:         cf.nummusURL,
		DoraURL:           cf.doraURL,
		HttpClientTimeout: cf.HTTPTimeout,
		RequestsPerSecond: cf.RequestsPerSecond,
		OrderPages:        cf.OrderPages,
	}
}

// NewClient creates a brokerage client. Callers must close the client.
func (cf *ClientFlags) NewClient(ctx context.Context) (*robinhood.Client, error) {
	token, err := cf.Token()
	if err != nil {
		return nil, err
	}
	client, err := robinhood.New(ctx, token, cf.options())
	if err != nil {
		return nil, fmt.Errorf("could not create brokerage client: %w", err)
	}
	return client, nil
}
