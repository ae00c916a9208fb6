// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bvk/tradinhood/exchange"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinArgs(args []string) string {
	return strings.Join(args, ",")
}

func parseKind(s string) (exchange.AssetKind, error) {
	switch v := exchange.AssetKind(s); v {
	case exchange.StockAsset, exchange.CurrencyAsset:
		return v, nil
	}
	return "", fmt.Errorf("asset kind %q must be stock or currency", s)
}
