// Copyright (c) 2025 BVK Chaitanya

package gobs

import (
	"github.com/bvk/tradinhood/exchange"
	"github.com/shopspring/decimal"
)

type StepPhase string

const (
	StepStart StepPhase = "start"
	StepEnd   StepPhase = "end"
)

// StepRecord captures the trader's account state at the start or the end of
// a single algorithm step.
type StepRecord struct {
	Run   string
	Time  exchange.RemoteTime
	Phase StepPhase

	Cash           decimal.Decimal
	PortfolioValue decimal.Decimal

	Owned  map[string]decimal.Decimal
	Prices map[string]decimal.Decimal
}

// TraderState is saved by the live trader at the end of every step so that
// a restarted trader can report its last known state.
type TraderState struct {
	Run        string
	Algorithm  string
	Resolution string
	Symbols    []string

	LastStep *StepRecord

	Orders []*Order

	// RefIDOffset is the offset of the next order reference id.
	RefIDOffset uint64
}

// MessengerState keeps the chat ids of the users authorized to receive
// notifications.
type MessengerState struct {
	UserChatIDMap map[string]int64
}
