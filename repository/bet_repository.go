package repository

import (
	"context"
	"fmt"

	"playvault/database"
	"playvault/models"

	"github.com/jackc/pgx/v5"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository bound to a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

const betColumns = `id, player, amount, choice, rolled, payout, status, request_id, created_at, settled_at`

// Create inserts a new bet and assigns its id
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (player, amount, choice, payout, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, bet.Player, bet.Amount, bet.Choice, bet.Payout, bet.Status).Scan(
		&bet.ID,
		&bet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet for player %s: %w", bet.Player, err)
	}

	return nil
}

func (r *BetRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*models.Bet, error) {
	query := fmt.Sprintf(`SELECT %s FROM bets WHERE id = $1`, betColumns)
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var bet models.Bet
	err := r.q.QueryRow(ctx, query, id).Scan(
		&bet.ID,
		&bet.Player,
		&bet.Amount,
		&bet.Choice,
		&bet.Rolled,
		&bet.Payout,
		&bet.Status,
		&bet.RequestID,
		&bet.CreatedAt,
		&bet.SettledAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}

	return &bet, nil
}

// GetByID retrieves a bet by its id
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate retrieves a bet locked for the current transaction
func (r *BetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	return r.getByID(ctx, id, true)
}

// GetByPlayer returns a player's bets, newest first
func (r *BetRepository) GetByPlayer(ctx context.Context, player string, limit int) ([]*models.Bet, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bets
		WHERE player = $1
		ORDER BY id DESC
		LIMIT $2
	`, betColumns)

	rows, err := r.q.Query(ctx, query, player, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for player %s: %w", player, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.Player,
			&bet.Amount,
			&bet.Choice,
			&bet.Rolled,
			&bet.Payout,
			&bet.Status,
			&bet.RequestID,
			&bet.CreatedAt,
			&bet.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}

// MarkAwaiting advances a bet to awaiting_randomness and records its request id
func (r *BetRepository) MarkAwaiting(ctx context.Context, betID int64, requestID string) error {
	query := `
		UPDATE bets
		SET status = $1, request_id = $2
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query, models.StatusAwaitingRandomness, requestID, betID)
	if err != nil {
		return fmt.Errorf("failed to mark bet %d awaiting: %w", betID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found", betID)
	}

	return nil
}

// Settle records outcome, payout and settled status
func (r *BetRepository) Settle(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE bets
		SET rolled = $1, payout = $2, status = $3, settled_at = NOW()
		WHERE id = $4
		RETURNING settled_at
	`

	err := r.q.QueryRow(ctx, query, bet.Rolled, bet.Payout, bet.Status, bet.ID).Scan(&bet.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to settle bet %d: %w", bet.ID, err)
	}

	return nil
}

// CreateRequestIndex maps a request id to a bet id
func (r *BetRepository) CreateRequestIndex(ctx context.Context, requestID string, betID int64) error {
	query := `INSERT INTO bet_requests (request_id, bet_id) VALUES ($1, $2)`

	if _, err := r.q.Exec(ctx, query, requestID, betID); err != nil {
		return fmt.Errorf("failed to index request %s for bet %d: %w", requestID, betID, err)
	}

	return nil
}

// GetBetIDByRequest resolves the request index; zero means no entry
func (r *BetRepository) GetBetIDByRequest(ctx context.Context, requestID string) (int64, error) {
	query := `SELECT bet_id FROM bet_requests WHERE request_id = $1`

	var betID int64
	err := r.q.QueryRow(ctx, query, requestID).Scan(&betID)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve request %s: %w", requestID, err)
	}

	return betID, nil
}

// DeleteRequestIndex removes the request index entry on settlement
func (r *BetRepository) DeleteRequestIndex(ctx context.Context, requestID string) error {
	query := `DELETE FROM bet_requests WHERE request_id = $1`

	if _, err := r.q.Exec(ctx, query, requestID); err != nil {
		return fmt.Errorf("failed to delete request index %s: %w", requestID, err)
	}

	return nil
}
