// Copyright (c) 2025 BVK Chaitanya

package exchange

import (
	"errors"
	"os"
	"testing"
)

func TestSplitOrderType(t *testing.T) {
	tests := []struct {
		in      OrderType
		apiType string
		trigger Trigger
	}{
		{Market, "market", Immediate},
		{Limit, "limit", Immediate},
		{StopLoss, "market", Stop},
		{StopLimit, "limit", Stop},
	}
	for _, test := range tests {
		apiType, trigger, err := SplitOrderType(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if apiType != test.apiType || trigger != test.trigger {
			t.Fatalf("%s: wanted %s/%s, got %s/%s", test.in, test.apiType, test.trigger, apiType, trigger)
		}
		if v := JoinOrderType(apiType, trigger); v != test.in {
			t.Fatalf("wanted %s, got %s", test.in, v)
		}
	}

	if _, _, err := SplitOrderType("trailing"); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("wanted os.ErrInvalid, got %v", err)
	}
}

func TestTerminalStates(t *testing.T) {
	terminal := map[OrderState]bool{
		Queued:             false,
		Confirmed:          false,
		"unconfirmed":      false,
		"partially_filled": false,
		Filled:             true,
		Cancelled:          true,
	}
	for state, want := range terminal {
		if got := state.IsTerminal(); got != want {
			t.Fatalf("%s: wanted %t, got %t", state, want, got)
		}
	}
}

func TestChecks(t *testing.T) {
	if err := Buy.Check(); err != nil {
		t.Fatal(err)
	}
	if err := Side("hold").Check(); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("wanted os.ErrInvalid, got %v", err)
	}
	for _, v := range []TimeInForce{"gtc", "gfd", "ioc", "opg"} {
		if err := v.Check(); err != nil {
			t.Fatal(err)
		}
	}
	if err := TimeInForce("fok").Check(); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("wanted os.ErrInvalid, got %v", err)
	}
}
