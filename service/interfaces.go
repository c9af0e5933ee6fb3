package service

import (
	"context"

	"playvault/events"
	"playvault/models"
)

// VaultRepository defines data access for the vault's state, authorized
// caller set, and operations ledger.
type VaultRepository interface {
	// GetState returns the vault's single state row
	GetState(ctx context.Context) (*models.VaultState, error)

	// GetStateForUpdate returns the state row locked for the current transaction
	GetStateForUpdate(ctx context.Context) (*models.VaultState, error)

	// AddBalance increases the vault balance atomically
	AddBalance(ctx context.Context, amount int64) error

	// DeductBalance decreases the vault balance, failing if funds are insufficient
	DeductBalance(ctx context.Context, amount int64) error

	// SetCeiling replaces the payout ceiling; zero disables the check
	SetCeiling(ctx context.Context, amount int64) error

	// SetPaused toggles the paused flag
	SetPaused(ctx context.Context, paused bool) error

	// SetAuthorized sets or clears a caller's membership in the authorized set
	SetAuthorized(ctx context.Context, callerID string, allowed bool) error

	// IsAuthorized reports whether a caller may trigger payouts
	IsAuthorized(ctx context.Context, callerID string) (bool, error)

	// RecordOperation appends an entry to the operations ledger
	RecordOperation(ctx context.Context, op *models.VaultOperation) error

	// GetOperations returns the most recent ledger entries
	GetOperations(ctx context.Context, limit int) ([]*models.VaultOperation, error)
}

// RandomnessRequestRepository defines data access for the router's pending
// request correlation table.
type RandomnessRequestRepository interface {
	// Create records a pending request; fails if the request id already exists
	Create(ctx context.Context, req *models.RandomnessRequest) error

	// Get returns the pending request, or nil if unknown or already consumed
	Get(ctx context.Context, requestID string) (*models.RandomnessRequest, error)

	// Consume deletes the pending request, reporting whether a row existed.
	// The delete participates in the caller's transaction, so consumption and
	// settlement commit or roll back together.
	Consume(ctx context.Context, requestID string) (bool, error)
}

// BetRepository defines data access for dice bets and their request index.
type BetRepository interface {
	// Create inserts a new bet and assigns its id
	Create(ctx context.Context, bet *models.Bet) error

	// GetByID retrieves a bet by its id
	GetByID(ctx context.Context, id int64) (*models.Bet, error)

	// GetByIDForUpdate retrieves a bet locked for the current transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error)

	// GetByPlayer returns a player's bets, newest first
	GetByPlayer(ctx context.Context, player string, limit int) ([]*models.Bet, error)

	// MarkAwaiting advances a bet to awaiting_randomness and records its request id
	MarkAwaiting(ctx context.Context, betID int64, requestID string) error

	// Settle records outcome, payout and settled status
	Settle(ctx context.Context, bet *models.Bet) error

	// CreateRequestIndex maps a request id to a bet id
	CreateRequestIndex(ctx context.Context, requestID string, betID int64) error

	// GetBetIDByRequest resolves the request index; zero means no entry
	GetBetIDByRequest(ctx context.Context, requestID string) (int64, error)

	// DeleteRequestIndex removes the request index entry on settlement
	DeleteRequestIndex(ctx context.Context, requestID string) error
}

// RoundRepository defines data access for raffle rounds, their entries, and
// their request index.
type RoundRepository interface {
	// Create inserts a new round and assigns its id
	Create(ctx context.Context, round *models.Round) error

	// GetByID retrieves a round by its id
	GetByID(ctx context.Context, id int64) (*models.Round, error)

	// GetCurrent returns the single unsettled round, or nil if none exists
	GetCurrent(ctx context.Context) (*models.Round, error)

	// GetCurrentForUpdate returns the unsettled round locked for the transaction
	GetCurrentForUpdate(ctx context.Context) (*models.Round, error)

	// GetByIDForUpdate retrieves a round locked for the current transaction
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Round, error)

	// Update persists status, timing, pot, winner and request id
	Update(ctx context.Context, round *models.Round) error

	// AddEntry appends a paid entry to a round
	AddEntry(ctx context.Context, entry *models.RoundEntry) error

	// GetEntries returns a round's entries in entry order
	GetEntries(ctx context.Context, roundID int64) ([]*models.RoundEntry, error)

	// CountEntries returns the number of entries in a round
	CountEntries(ctx context.Context, roundID int64) (int, error)

	// IncrementPot adds an entry's stake to the round pot
	IncrementPot(ctx context.Context, roundID int64, amount int64) error

	// CreateRequestIndex maps a request id to a round id
	CreateRequestIndex(ctx context.Context, requestID string, roundID int64) error

	// GetRoundIDByRequest resolves the request index; zero means no entry
	GetRoundIDByRequest(ctx context.Context, requestID string) (int64, error)

	// DeleteRequestIndex removes the request index entry on settlement
	DeleteRequestIndex(ctx context.Context, requestID string) error
}

// EventPublisher publishes events that are flushed only after the enclosing
// transaction commits.
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional access to all repositories
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// VaultRepository returns the vault repository bound to this transaction
	VaultRepository() VaultRepository

	// RandomnessRequestRepository returns the pending-request repository
	RandomnessRequestRepository() RandomnessRequestRepository

	// BetRepository returns the bet repository bound to this transaction
	BetRepository() BetRepository

	// RoundRepository returns the round repository bound to this transaction
	RoundRepository() RoundRepository

	// EventBus returns the transactional event publisher
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// Oracle is the external randomness source. Request registers a request and
// returns the oracle-assigned request id synchronously; the single fulfillment
// arrives later, out-of-band, through the router's Fulfill entry point.
type Oracle interface {
	Request(ctx context.Context, req models.OracleRequest) (string, error)
}

// RandomnessConsumer is a game's settlement entry point. Settle is invoked by
// the router with its capability key; implementations must reject any other
// caller and must be safe against duplicate delivery.
type RandomnessConsumer interface {
	// Name identifies the consumer in the pending-request table
	Name() string

	// Settle applies one delivered random word to the entity correlated with
	// requestID
	Settle(ctx context.Context, callerKey, requestID string, randomWord uint64) error
}

// RandomnessRouter correlates randomness requests with their eventual
// fulfillments. It is deliberately dumb: idempotence and state validation
// live in the consumers.
type RandomnessRouter interface {
	// Request issues a randomness request on behalf of consumer inside the
	// caller's unit of work and returns the request id
	Request(ctx context.Context, uow UnitOfWork, consumer string) (string, error)

	// Fulfill routes one delivered random word to the requesting consumer.
	// Only the configured oracle identity is accepted.
	Fulfill(ctx context.Context, oracleID, requestID string, randomWords []uint64) error

	// RegisterConsumer registers a game's settlement entry point
	RegisterConsumer(consumer RandomnessConsumer)
}

// VaultService defines the vault's public operations
type VaultService interface {
	// Authorize sets or clears a caller's payout permission (administrator only)
	Authorize(ctx context.Context, adminKey, callerID string, allowed bool) error

	// SetCeiling replaces the payout ceiling (administrator only)
	SetCeiling(ctx context.Context, adminKey string, amount int64) error

	// Pause disables payouts (administrator only)
	Pause(ctx context.Context, adminKey string) error

	// Unpause re-enables payouts (administrator only)
	Unpause(ctx context.Context, adminKey string) error

	// Deposit adds funds to the vault on behalf of any depositor
	Deposit(ctx context.Context, depositor string, amount int64) (int64, error)

	// Payout transfers funds to recipient on behalf of an authorized caller
	Payout(ctx context.Context, callerID, recipient string, amount int64) error

	// AdminWithdraw moves funds out ignoring pause and ceiling (administrator only)
	AdminWithdraw(ctx context.Context, adminKey, recipient string, amount int64) error

	// GetState returns the vault's current state
	GetState(ctx context.Context) (*models.VaultState, error)

	// GetOperations returns recent ledger entries
	GetOperations(ctx context.Context, limit int) ([]*models.VaultOperation, error)
}

// BettingService defines the dice game's operations
type BettingService interface {
	RandomnessConsumer

	// PlaceBet validates and records a bet, forwards the stake to the vault,
	// and issues the randomness request
	PlaceBet(ctx context.Context, player string, choice int, amount int64) (*models.BetReceipt, error)

	// GetBet returns a bet by id
	GetBet(ctx context.Context, id int64) (*models.Bet, error)

	// GetPlayerBets returns a player's bet history, newest first
	GetPlayerBets(ctx context.Context, player string, limit int) ([]*models.Bet, error)
}

// RaffleService defines the pooled round game's operations
type RaffleService interface {
	RandomnessConsumer

	// Enter adds a paid entry to the current open round
	Enter(ctx context.Context, player string, amount int64) (*models.Round, error)

	// CheckTrigger is the side-effect-free probe used by keepers
	CheckTrigger(ctx context.Context) (*models.TriggerCheck, error)

	// PerformTrigger closes the round and issues its randomness request, or
	// resets the clock of an empty elapsed round
	PerformTrigger(ctx context.Context) error

	// GetCurrentRound returns the active round with its entries
	GetCurrentRound(ctx context.Context) (*models.RoundInfo, error)

	// GetRound returns a historical round with its entries
	GetRound(ctx context.Context, id int64) (*models.RoundInfo, error)
}
