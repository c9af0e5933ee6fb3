package service

import (
	"context"
	"fmt"

	"playvault/events"
	"playvault/models"

	log "github.com/sirupsen/logrus"
)

type vaultService struct {
	uowFactory UnitOfWorkFactory
	adminKey   string
}

// NewVaultService creates a new vault service. adminKey is the single
// privileged identity set at deployment; there is no role hierarchy.
func NewVaultService(uowFactory UnitOfWorkFactory, adminKey string) VaultService {
	return &vaultService{
		uowFactory: uowFactory,
		adminKey:   adminKey,
	}
}

func (s *vaultService) checkAdmin(adminKey string) error {
	if s.adminKey == "" || adminKey != s.adminKey {
		return models.ErrUnauthorized
	}
	return nil
}

// Authorize sets or clears a caller's payout permission
func (s *vaultService) Authorize(ctx context.Context, adminKey, callerID string, allowed bool) error {
	if err := s.checkAdmin(adminKey); err != nil {
		return err
	}
	if callerID == "" {
		return models.ErrInvalidRecipient
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.VaultRepository().SetAuthorized(ctx, callerID, allowed); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"callerID": callerID,
		"allowed":  allowed,
	}).Info("Vault authorization updated")
	return nil
}

// SetCeiling replaces the payout ceiling; zero disables the check
func (s *vaultService) SetCeiling(ctx context.Context, adminKey string, amount int64) error {
	if err := s.checkAdmin(adminKey); err != nil {
		return err
	}
	if amount < 0 {
		return models.ErrZeroAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.VaultRepository().SetCeiling(ctx, amount); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("ceiling", amount).Info("Vault payout ceiling updated")
	return nil
}

func (s *vaultService) setPaused(ctx context.Context, adminKey string, paused bool) error {
	if err := s.checkAdmin(adminKey); err != nil {
		return err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.VaultRepository().SetPaused(ctx, paused); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("paused", paused).Info("Vault paused flag updated")
	return nil
}

// Pause disables payouts
func (s *vaultService) Pause(ctx context.Context, adminKey string) error {
	return s.setPaused(ctx, adminKey, true)
}

// Unpause re-enables payouts
func (s *vaultService) Unpause(ctx context.Context, adminKey string) error {
	return s.setPaused(ctx, adminKey, false)
}

// Deposit adds funds to the vault on behalf of any depositor and returns the
// new balance. Depositor identity is recorded only in the operations ledger.
func (s *vaultService) Deposit(ctx context.Context, depositor string, amount int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := DepositToVault(ctx, uow, depositor, amount); err != nil {
		return 0, err
	}

	state, err := uow.VaultRepository().GetState(ctx)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return state.Balance, nil
}

// Payout transfers funds to recipient on behalf of an authorized caller
func (s *vaultService) Payout(ctx context.Context, callerID, recipient string, amount int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := PayoutFromVault(ctx, uow, callerID, recipient, amount); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AdminWithdraw moves funds out for operational management. It ignores the
// pause flag and the ceiling but never the solvency check.
func (s *vaultService) AdminWithdraw(ctx context.Context, adminKey, recipient string, amount int64) error {
	if err := s.checkAdmin(adminKey); err != nil {
		return err
	}
	if recipient == "" {
		return models.ErrInvalidRecipient
	}
	if amount <= 0 {
		return models.ErrZeroAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	vaultRepo := uow.VaultRepository()
	if _, err := vaultRepo.GetStateForUpdate(ctx); err != nil {
		return err
	}

	if err := vaultRepo.DeductBalance(ctx, amount); err != nil {
		return err
	}

	op := &models.VaultOperation{
		Kind:         models.OperationAdminWithdraw,
		CallerID:     "admin",
		Counterparty: recipient,
		Amount:       amount,
	}
	if err := vaultRepo.RecordOperation(ctx, op); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"recipient": recipient,
		"amount":    amount,
	}).Warn("Admin withdrawal executed")
	return nil
}

// GetState returns the vault's current state
func (s *vaultService) GetState(ctx context.Context) (*models.VaultState, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.VaultRepository().GetState(ctx)
}

// GetOperations returns recent ledger entries
func (s *vaultService) GetOperations(ctx context.Context, limit int) ([]*models.VaultOperation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.VaultRepository().GetOperations(ctx, limit)
}

// DepositToVault moves amount into the vault inside the caller's unit of
// work. The games use this to forward stakes the moment they are paid, so
// player funds never rest in game custody.
func DepositToVault(ctx context.Context, uow UnitOfWork, depositor string, amount int64) error {
	if amount <= 0 {
		return models.ErrZeroAmount
	}

	vaultRepo := uow.VaultRepository()
	if err := vaultRepo.AddBalance(ctx, amount); err != nil {
		return err
	}

	op := &models.VaultOperation{
		Kind:         models.OperationDeposit,
		CallerID:     depositor,
		Counterparty: depositor,
		Amount:       amount,
	}
	if err := vaultRepo.RecordOperation(ctx, op); err != nil {
		return err
	}

	state, err := vaultRepo.GetState(ctx)
	if err != nil {
		return err
	}

	uow.EventBus().Publish(events.DepositReceivedEvent{
		Depositor:  depositor,
		Amount:     amount,
		NewBalance: state.Balance,
	})

	return nil
}

// PayoutFromVault pays amount to recipient inside the caller's unit of work.
// A failure here rolls back the whole enclosing transaction, including any
// settlement state the game has already written.
//
// Check order: authorization, recipient, amount, pause, ceiling, solvency.
func PayoutFromVault(ctx context.Context, uow UnitOfWork, callerID, recipient string, amount int64) error {
	vaultRepo := uow.VaultRepository()

	authorized, err := vaultRepo.IsAuthorized(ctx, callerID)
	if err != nil {
		return err
	}
	if !authorized {
		return models.ErrUnauthorized
	}
	if recipient == "" {
		return models.ErrInvalidRecipient
	}
	if amount <= 0 {
		return models.ErrZeroAmount
	}

	state, err := vaultRepo.GetStateForUpdate(ctx)
	if err != nil {
		return err
	}
	if state.Paused {
		return models.ErrVaultPaused
	}
	if state.PayoutCeiling > 0 && amount > state.PayoutCeiling {
		return models.ErrExceedsCeiling
	}
	if state.Balance < amount {
		return models.ErrInsufficientBalance
	}

	if err := vaultRepo.DeductBalance(ctx, amount); err != nil {
		return err
	}

	op := &models.VaultOperation{
		Kind:         models.OperationPayout,
		CallerID:     callerID,
		Counterparty: recipient,
		Amount:       amount,
	}
	if err := vaultRepo.RecordOperation(ctx, op); err != nil {
		return err
	}

	uow.EventBus().Publish(events.PaidOutEvent{
		CallerID:  callerID,
		Recipient: recipient,
		Amount:    amount,
	})

	return nil
}
