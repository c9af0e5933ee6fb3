package repository

import (
	"context"
	"fmt"

	"playvault/database"
	"playvault/models"

	"github.com/jackc/pgx/v5"
)

// VaultRepository implements the service.VaultRepository interface
type VaultRepository struct {
	q queryable
}

// NewVaultRepository creates a new vault repository
func NewVaultRepository(db *database.DB) *VaultRepository {
	return &VaultRepository{q: db.Pool}
}

// newVaultRepositoryWithTx creates a new vault repository bound to a transaction
func newVaultRepositoryWithTx(tx queryable) *VaultRepository {
	return &VaultRepository{q: tx}
}

const vaultStateColumns = `balance, payout_ceiling, paused, updated_at`

func (r *VaultRepository) getState(ctx context.Context, forUpdate bool) (*models.VaultState, error) {
	query := fmt.Sprintf(`SELECT %s FROM vault_state WHERE id = 1`, vaultStateColumns)
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var state models.VaultState
	err := r.q.QueryRow(ctx, query).Scan(
		&state.Balance,
		&state.PayoutCeiling,
		&state.Paused,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get vault state: %w", err)
	}

	return &state, nil
}

// GetState returns the vault's single state row
func (r *VaultRepository) GetState(ctx context.Context) (*models.VaultState, error) {
	return r.getState(ctx, false)
}

// GetStateForUpdate returns the state row locked for the current transaction
func (r *VaultRepository) GetStateForUpdate(ctx context.Context) (*models.VaultState, error) {
	return r.getState(ctx, true)
}

// AddBalance increases the vault balance atomically
func (r *VaultRepository) AddBalance(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return models.ErrZeroAmount
	}

	query := `
		UPDATE vault_state
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = 1
	`

	if _, err := r.q.Exec(ctx, query, amount); err != nil {
		return fmt.Errorf("failed to add vault balance: %w", err)
	}

	return nil
}

// DeductBalance decreases the vault balance, failing if funds are insufficient.
// The guard lives in the WHERE clause so the check-then-act is a single
// atomic statement.
func (r *VaultRepository) DeductBalance(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return models.ErrZeroAmount
	}

	query := `
		UPDATE vault_state
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = 1 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount)
	if err != nil {
		return fmt.Errorf("failed to deduct vault balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrInsufficientBalance
	}

	return nil
}

// SetCeiling replaces the payout ceiling; zero disables the check
func (r *VaultRepository) SetCeiling(ctx context.Context, amount int64) error {
	query := `
		UPDATE vault_state
		SET payout_ceiling = $1, updated_at = NOW()
		WHERE id = 1
	`

	if _, err := r.q.Exec(ctx, query, amount); err != nil {
		return fmt.Errorf("failed to set payout ceiling: %w", err)
	}

	return nil
}

// SetPaused toggles the paused flag
func (r *VaultRepository) SetPaused(ctx context.Context, paused bool) error {
	query := `
		UPDATE vault_state
		SET paused = $1, updated_at = NOW()
		WHERE id = 1
	`

	if _, err := r.q.Exec(ctx, query, paused); err != nil {
		return fmt.Errorf("failed to set paused flag: %w", err)
	}

	return nil
}

// SetAuthorized sets or clears a caller's membership in the authorized set
func (r *VaultRepository) SetAuthorized(ctx context.Context, callerID string, allowed bool) error {
	query := `
		INSERT INTO vault_callers (caller_id, authorized)
		VALUES ($1, $2)
		ON CONFLICT (caller_id) DO UPDATE
		SET authorized = EXCLUDED.authorized, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, callerID, allowed); err != nil {
		return fmt.Errorf("failed to set authorization for caller %s: %w", callerID, err)
	}

	return nil
}

// IsAuthorized reports whether a caller may trigger payouts. Callers absent
// from the set are unauthorized.
func (r *VaultRepository) IsAuthorized(ctx context.Context, callerID string) (bool, error) {
	query := `SELECT authorized FROM vault_callers WHERE caller_id = $1`

	var authorized bool
	err := r.q.QueryRow(ctx, query, callerID).Scan(&authorized)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check authorization for caller %s: %w", callerID, err)
	}

	return authorized, nil
}

// RecordOperation appends an entry to the operations ledger
func (r *VaultRepository) RecordOperation(ctx context.Context, op *models.VaultOperation) error {
	query := `
		INSERT INTO vault_operations (kind, caller_id, counterparty, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, op.Kind, op.CallerID, op.Counterparty, op.Amount).Scan(
		&op.ID,
		&op.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record vault operation: %w", err)
	}

	return nil
}

// GetOperations returns the most recent ledger entries
func (r *VaultRepository) GetOperations(ctx context.Context, limit int) ([]*models.VaultOperation, error) {
	query := `
		SELECT id, kind, caller_id, counterparty, amount, created_at
		FROM vault_operations
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get vault operations: %w", err)
	}
	defer rows.Close()

	var ops []*models.VaultOperation
	for rows.Next() {
		var op models.VaultOperation
		err := rows.Scan(&op.ID, &op.Kind, &op.CallerID, &op.Counterparty, &op.Amount, &op.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vault operation: %w", err)
		}
		ops = append(ops, &op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vault operations: %w", err)
	}

	return ops, nil
}
