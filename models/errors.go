package models

import (
	"errors"
	"fmt"
)

// Validation errors (caller input).
var (
	ErrInvalidChoice    = errors.New("choice out of range")
	ErrStakeTooLow      = errors.New("stake below minimum")
	ErrStakeTooHigh     = errors.New("stake above maximum")
	ErrZeroAmount       = errors.New("amount must be positive")
	ErrInvalidRecipient = errors.New("recipient must not be empty")
)

// Authorization errors. All authorization checks fail closed.
var (
	ErrUnauthorized = errors.New("caller not authorized")
	ErrNotProvider  = errors.New("caller is not the randomness provider")
	ErrNotOracle    = errors.New("caller is not the configured oracle")
)

// State machine violations.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRoundNotOpen      = errors.New("round is not open for entries")
	ErrAlreadySettled    = errors.New("already settled")
	ErrNoEntrants        = errors.New("round has no entrants")
)

// Resource errors (vault side).
var (
	ErrVaultPaused         = errors.New("vault is paused")
	ErrExceedsCeiling      = errors.New("payout exceeds ceiling")
	ErrInsufficientBalance = errors.New("insufficient vault balance")
)

// Protocol/replay errors. These are the primary defense against double
// settlement: a consumed request identifier must never be honored twice.
var (
	ErrUnknownRequest = errors.New("unknown or already consumed request id")
	ErrBetNotFound    = errors.New("no bet for request id")
	ErrRoundNotFound  = errors.New("no round for request id")
)

// TriggerNotNeededError is returned by PerformTrigger when the raffle round is
// not ready to close. It carries diagnostic context so permissionless keepers
// can see why their call did nothing.
type TriggerNotNeededError struct {
	Status   Status
	Entrants int
	Pot      int64
}

func (e *TriggerNotNeededError) Error() string {
	return fmt.Sprintf("trigger not needed: status=%s entrants=%d pot=%d",
		e.Status, e.Entrants, e.Pot)
}
