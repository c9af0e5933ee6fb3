package service

import (
	"context"
	"fmt"

	"playvault/events"
	"playvault/models"

	log "github.com/sirupsen/logrus"
)

const (
	// DiceSides is the number of discrete outcomes
	DiceSides = 6

	// PayoutMultiplier is applied to the stake on a win, before the edge
	PayoutMultiplier = 6

	// HouseEdgeBips is the house take in basis points
	HouseEdgeBips = 200

	// BipsBasis is the fixed-point basis for the edge arithmetic
	BipsBasis = 10000
)

// BettingConfig carries the dice game's deployment-time parameters.
type BettingConfig struct {
	MinStake int64
	MaxStake int64

	// ProviderKey is the capability key expected from the randomness router
	ProviderKey string

	// VaultCallerID is this game's identity in the vault's authorized set
	VaultCallerID string
}

type bettingService struct {
	uowFactory UnitOfWorkFactory
	router     RandomnessRouter
	cfg        BettingConfig
}

// NewBettingService creates the dice game service
func NewBettingService(uowFactory UnitOfWorkFactory, router RandomnessRouter, cfg BettingConfig) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
		router:     router,
		cfg:        cfg,
	}
}

// Name identifies this game in the router's pending-request table
func (s *bettingService) Name() string {
	return "betting-game"
}

// WinPayout computes the payout for a winning stake using integer fixed-point
// arithmetic: stake * multiplier * (basis - edge) / basis.
func WinPayout(stake int64) int64 {
	return stake * PayoutMultiplier * (BipsBasis - HouseEdgeBips) / BipsBasis
}

// PlaceBet validates and records a bet, forwards the stake to the vault, and
// issues the randomness request. The bet leaves this call already awaiting
// its fulfillment; the Open status exists only inside this transaction.
func (s *bettingService) PlaceBet(ctx context.Context, player string, choice int, amount int64) (*models.BetReceipt, error) {
	if player == "" {
		return nil, models.ErrInvalidRecipient
	}
	if choice < 1 || choice > DiceSides {
		return nil, fmt.Errorf("%w: %d not in [1,%d]", models.ErrInvalidChoice, choice, DiceSides)
	}
	if amount < s.cfg.MinStake {
		return nil, fmt.Errorf("%w: %d < %d", models.ErrStakeTooLow, amount, s.cfg.MinStake)
	}
	if amount > s.cfg.MaxStake {
		return nil, fmt.Errorf("%w: %d > %d", models.ErrStakeTooHigh, amount, s.cfg.MaxStake)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet := &models.Bet{
		Player: player,
		Amount: amount,
		Choice: choice,
		Status: models.StatusOpen,
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, err
	}

	// The stake moves to the vault immediately; the game never holds player
	// funds at rest.
	if err := DepositToVault(ctx, uow, player, amount); err != nil {
		return nil, err
	}

	next, err := bet.Status.Transition(models.StatusAwaitingRandomness)
	if err != nil {
		return nil, err
	}
	bet.Status = next

	requestID, err := s.router.Request(ctx, uow, s.Name())
	if err != nil {
		return nil, err
	}

	if err := uow.BetRepository().MarkAwaiting(ctx, bet.ID, requestID); err != nil {
		return nil, err
	}
	if err := uow.BetRepository().CreateRequestIndex(ctx, requestID, bet.ID); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:     bet.ID,
		Player:    player,
		Amount:    amount,
		Choice:    choice,
		RequestID: requestID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"betID":     bet.ID,
		"player":    player,
		"amount":    amount,
		"choice":    choice,
		"requestID": requestID,
	}).Info("Bet placed")

	return &models.BetReceipt{
		BetID:     bet.ID,
		RequestID: requestID,
		Amount:    amount,
		Choice:    choice,
	}, nil
}

// Settle applies a delivered random word to the bet correlated with
// requestID. Only the router's capability key is accepted. Consuming the
// pending row, deleting the request index, flipping the status, and paying
// the winner all share one transaction, so a vault failure discards the
// settlement entirely.
func (s *bettingService) Settle(ctx context.Context, callerKey, requestID string, randomWord uint64) error {
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

	betRepo := uow.BetRepository()
	betID, err := betRepo.GetBetIDByRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if betID == 0 {
		// The index entry is deleted on first settlement, so a duplicate
		// delivery finds nothing here.
		return fmt.Errorf("%w: %s", models.ErrBetNotFound, requestID)
	}

	bet, err := betRepo.GetByIDForUpdate(ctx, betID)
	if err != nil {
		return err
	}
	if bet == nil {
		return fmt.Errorf("%w: bet %d", models.ErrBetNotFound, betID)
	}
	if bet.Status != models.StatusAwaitingRandomness {
		return fmt.Errorf("%w: bet %d is %s", models.ErrAlreadySettled, bet.ID, bet.Status)
	}

	rolled := int(randomWord%DiceSides) + 1
	won := rolled == bet.Choice

	var payout int64
	if won {
		payout = WinPayout(bet.Amount)
	}

	next, err := bet.Status.Transition(models.StatusSettled)
	if err != nil {
		return err
	}
	bet.Status = next
	bet.Rolled = &rolled
	bet.Payout = payout

	if err := betRepo.Settle(ctx, bet); err != nil {
		return err
	}
	if err := betRepo.DeleteRequestIndex(ctx, requestID); err != nil {
		return err
	}

	if won {
		if err := PayoutFromVault(ctx, uow, s.cfg.VaultCallerID, bet.Player, payout); err != nil {
			return err
		}
	}

	uow.EventBus().Publish(events.BetSettledEvent{
		BetID:     bet.ID,
		Player:    bet.Player,
		RequestID: requestID,
		Rolled:    rolled,
		Won:       won,
		Payout:    payout,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"betID":  bet.ID,
		"rolled": rolled,
		"won":    won,
		"payout": payout,
	}).Info("Bet settled")
	return nil
}

// GetBet returns a bet by id
func (s *bettingService) GetBet(ctx context.Context, id int64) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.BetRepository().GetByID(ctx, id)
}

// GetPlayerBets returns a player's bet history, newest first
func (s *bettingService) GetPlayerBets(ctx context.Context, player string, limit int) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.BetRepository().GetByPlayer(ctx, player, limit)
}
