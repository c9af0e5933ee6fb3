package models

import "fmt"

// Status is the lifecycle state shared by bets and raffle rounds.
// Transitions are strictly forward-only:
//
//	Open -> AwaitingRandomness -> Settled
type Status string

const (
	StatusOpen               Status = "open"
	StatusAwaitingRandomness Status = "awaiting_randomness"
	StatusSettled            Status = "settled"
)

// CanTransitionTo reports whether moving to next is a legal transition.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusOpen:
		return next == StatusAwaitingRandomness
	case StatusAwaitingRandomness:
		return next == StatusSettled
	default:
		return false
	}
}

// Transition validates and returns the next status. Every status mutation in
// the services goes through this check rather than inferring state from other
// fields.
func (s Status) Transition(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusAwaitingRandomness, StatusSettled:
		return true
	}
	return false
}
