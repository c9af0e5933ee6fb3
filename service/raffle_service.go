package service

import (
	"context"
	"fmt"
	"time"

	"playvault/events"
	"playvault/models"

	log "github.com/sirupsen/logrus"
)

// RaffleConfig carries the round game's deployment-time parameters.
type RaffleConfig struct {
	// EntranceFee is the minimum payment to join a round
	EntranceFee int64

	// Interval is how long a round stays open before it can be triggered
	Interval time.Duration

	// ProviderKey is the capability key expected from the randomness router
	ProviderKey string

	// VaultCallerID is this game's identity in the vault's authorized set
	VaultCallerID string
}

type raffleService struct {
	uowFactory UnitOfWorkFactory
	router     RandomnessRouter
	cfg        RaffleConfig
	now        func() time.Time
}

// NewRaffleService creates the pooled round game service
func NewRaffleService(uowFactory UnitOfWorkFactory, router RandomnessRouter, cfg RaffleConfig) RaffleService {
	return &raffleService{
		uowFactory: uowFactory,
		router:     router,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Name identifies this game in the router's pending-request table
func (s *raffleService) Name() string {
	return "raffle-game"
}

// currentRound returns the single unsettled round, creating round 1 if the
// game has never run. The partial unique index on rounds guarantees there is
// never more than one.
func (s *raffleService) currentRound(ctx context.Context, uow UnitOfWork, forUpdate bool) (*models.Round, error) {
	roundRepo := uow.RoundRepository()

	var round *models.Round
	var err error
	if forUpdate {
		round, err = roundRepo.GetCurrentForUpdate(ctx)
	} else {
		round, err = roundRepo.GetCurrent(ctx)
	}
	if err != nil {
		return nil, err
	}
	if round != nil {
		return round, nil
	}

	round = &models.Round{
		Status:    models.StatusOpen,
		StartedAt: s.now(),
	}
	if err := roundRepo.Create(ctx, round); err != nil {
		return nil, err
	}
	uow.EventBus().Publish(events.RoundStartedEvent{RoundID: round.ID})
	return round, nil
}

// Enter adds a paid entry to the current open round. Duplicate entries by the
// same player are allowed and each counts separately in the draw.
func (s *raffleService) Enter(ctx context.Context, player string, amount int64) (*models.Round, error) {
	if player == "" {
		return nil, models.ErrInvalidRecipient
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := s.currentRound(ctx, uow, true)
	if err != nil {
		return nil, err
	}
	if round.Status != models.StatusOpen {
		return nil, fmt.Errorf("%w: round %d is %s", models.ErrRoundNotOpen, round.ID, round.Status)
	}
	if amount < s.cfg.EntranceFee {
		return nil, fmt.Errorf("%w: %d < %d", models.ErrStakeTooLow, amount, s.cfg.EntranceFee)
	}

	entry := &models.RoundEntry{
		RoundID: round.ID,
		Player:  player,
		Amount:  amount,
	}
	if err := uow.RoundRepository().AddEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err := uow.RoundRepository().IncrementPot(ctx, round.ID, amount); err != nil {
		return nil, err
	}
	round.Pot += amount

	uow.EventBus().Publish(events.RoundEnteredEvent{
		RoundID: round.ID,
		Player:  player,
		Amount:  amount,
		Pot:     round.Pot,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID": round.ID,
		"player":  player,
		"amount":  amount,
		"pot":     round.Pot,
	}).Info("Round entered")
	return round, nil
}

// CheckTrigger is the side-effect-free probe used by keepers. It is cheap to
// poll and never mutates state.
func (s *raffleService) CheckTrigger(ctx context.Context) (*models.TriggerCheck, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return &models.TriggerCheck{Ready: false}, nil
	}

	entrants, err := uow.RoundRepository().CountEntries(ctx, round.ID)
	if err != nil {
		return nil, err
	}

	elapsed := s.now().Sub(round.StartedAt)
	check := &models.TriggerCheck{
		Status:   round.Status,
		Entrants: entrants,
		Pot:      round.Pot,
		Elapsed:  elapsed,
	}
	check.Ready = round.Status == models.StatusOpen &&
		elapsed >= s.cfg.Interval &&
		entrants > 0
	return check, nil
}

// PerformTrigger re-derives the trigger conditions and, if met, closes the
// round and issues its single randomness request. An elapsed round with zero
// entrants has its clock reset instead, keeping it open until someone joins.
// Anyone may call this at any time.
func (s *raffleService) PerformTrigger(ctx context.Context) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := s.currentRound(ctx, uow, true)
	if err != nil {
		return err
	}

	entrants, err := uow.RoundRepository().CountEntries(ctx, round.ID)
	if err != nil {
		return err
	}

	elapsed := s.now().Sub(round.StartedAt)
	intervalPassed := elapsed >= s.cfg.Interval

	if round.Status == models.StatusOpen && intervalPassed && entrants == 0 {
		// Nobody joined; give the round a fresh window rather than drawing
		// from an empty list.
		round.StartedAt = s.now()
		if err := uow.RoundRepository().Update(ctx, round); err != nil {
			return err
		}
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		log.WithField("roundID", round.ID).Info("Empty round clock reset")
		return nil
	}

	if round.Status != models.StatusOpen || !intervalPassed {
		return &models.TriggerNotNeededError{
			Status:   round.Status,
			Entrants: entrants,
			Pot:      round.Pot,
		}
	}
	if entrants == 0 {
		return models.ErrNoEntrants
	}

	next, err := round.Status.Transition(models.StatusAwaitingRandomness)
	if err != nil {
		return err
	}
	round.Status = next

	requestID, err := s.router.Request(ctx, uow, s.Name())
	if err != nil {
		return err
	}
	round.RequestID = &requestID

	if err := uow.RoundRepository().Update(ctx, round); err != nil {
		return err
	}
	if err := uow.RoundRepository().CreateRequestIndex(ctx, requestID, round.ID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":   round.ID,
		"entrants":  entrants,
		"pot":       round.Pot,
		"requestID": requestID,
	}).Info("Round closed, randomness requested")
	return nil
}

// Settle picks the winner for the round correlated with requestID, sweeps the
// pot through the vault to the winner, and unconditionally opens the next
// round. All of it happens in one transaction, so the game can never be left
// without a current round.
func (s *raffleService) Settle(ctx context.Context, callerKey, requestID string, randomWord uint64) error {
	if callerKey != s.cfg.ProviderKey {
		return models.ErrNotProvider
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	consumed, err := uow.RandomnessRequestRepository().Consume(ctx, requestID)
	if err != nil {
		return err
	}
	if !consumed {
		return fmt.Errorf("%w: %s", models.ErrUnknownRequest, requestID)
	}

	roundRepo := uow.RoundRepository()
	roundID, err := roundRepo.GetRoundIDByRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if roundID == 0 {
		return fmt.Errorf("%w: %s", models.ErrRoundNotFound, requestID)
	}

	round, err := roundRepo.GetByIDForUpdate(ctx, roundID)
	if err != nil {
		return err
	}
	if round == nil {
		return fmt.Errorf("%w: round %d", models.ErrRoundNotFound, roundID)
	}
	if round.Status != models.StatusAwaitingRandomness {
		return fmt.Errorf("%w: round %d is %s", models.ErrAlreadySettled, round.ID, round.Status)
	}

	// The entry list froze when the round left Open, so the selection cannot
	// be biased by entries arriving after the trigger.
	entries, err := roundRepo.GetEntries(ctx, round.ID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return models.ErrNoEntrants
	}

	winnerIndex := int(randomWord % uint64(len(entries)))
	winner := entries[winnerIndex].Player
	pot := round.Pot

	next, err := round.Status.Transition(models.StatusSettled)
	if err != nil {
		return err
	}
	round.Status = next
	round.Winner = &winner
	round.WinningIndex = &winnerIndex
	settledAt := s.now()
	round.SettledAt = &settledAt

	if err := roundRepo.Update(ctx, round); err != nil {
		return err
	}
	if err := roundRepo.DeleteRequestIndex(ctx, requestID); err != nil {
		return err
	}

	// Pot custody moves through the vault: deposit, then the authorized
	// payout to the winner.
	if err := DepositToVault(ctx, uow, s.cfg.VaultCallerID, pot); err != nil {
		return err
	}
	if err := PayoutFromVault(ctx, uow, s.cfg.VaultCallerID, winner, pot); err != nil {
		return err
	}

	uow.EventBus().Publish(events.WinnerPickedEvent{
		RoundID:      round.ID,
		Winner:       winner,
		WinningIndex: winnerIndex,
		Pot:          pot,
		RequestID:    requestID,
	})

	nextRound := &models.Round{
		Status:    models.StatusOpen,
		StartedAt: s.now(),
	}
	if err := roundRepo.Create(ctx, nextRound); err != nil {
		return err
	}
	uow.EventBus().Publish(events.RoundStartedEvent{RoundID: nextRound.ID})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":     round.ID,
		"winner":      winner,
		"winnerIndex": winnerIndex,
		"pot":         pot,
		"nextRoundID": nextRound.ID,
	}).Info("Round settled, next round started")
	return nil
}

// GetCurrentRound returns the active round with its entries
func (s *raffleService) GetCurrentRound(ctx context.Context) (*models.RoundInfo, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, nil
	}

	entries, err := uow.RoundRepository().GetEntries(ctx, round.ID)
	if err != nil {
		return nil, err
	}

	return &models.RoundInfo{Round: round, Entries: entries}, nil
}

// GetRound returns a historical round with its entries
func (s *raffleService) GetRound(ctx context.Context, id int64) (*models.RoundInfo, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, nil
	}

	entries, err := uow.RoundRepository().GetEntries(ctx, round.ID)
	if err != nil {
		return nil, err
	}

	return &models.RoundInfo{Round: round, Entries: entries}, nil
}
