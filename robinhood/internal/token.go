// Copyright (c) 2025 BVK Chaitanya

package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bvk/tradinhood/exchange"
	"gopkg.in/square/go-jose.v2/jwt"
)

// TokenExpiry returns the expiry time embedded in a JWT bearer token. Token
// signature is not verified. Returns false if the token is opaque or has no
// expiry claim.
func TokenExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return time.Time{}, false
	}
	var claims jwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		slog.Warn("could not decode bearer token claims (ignored)", "err", err)
		return time.Time{}, false
	}
	if claims.Expiry == nil {
		return time.Time{}, false
	}
	return claims.Expiry.Time(), true
}

func checkTokenExpiry(token string, now time.Time) error {
	expiry, ok := TokenExpiry(token)
	if !ok {
		return nil
	}
	if !now.Before(expiry) {
		return fmt.Errorf("bearer token has expired at %s: %w", expiry.Format(time.RFC3339), exchange.ErrAPI)
	}
	if d := expiry.Sub(now); d < time.Hour {
		slog.Warn("bearer token expires soon", "expiry", expiry, "remaining", d)
	}
	return nil
}
