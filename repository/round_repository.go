package repository

import (
	"context"
	"fmt"

	"playvault/database"
	"playvault/models"

	"github.com/jackc/pgx/v5"
)

// RoundRepository implements the service.RoundRepository interface
type RoundRepository struct {
	q queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *database.DB) *RoundRepository {
	return &RoundRepository{q: db.Pool}
}

// newRoundRepositoryWithTx creates a new round repository bound to a transaction
func newRoundRepositoryWithTx(tx queryable) *RoundRepository {
	return &RoundRepository{q: tx}
}

const roundColumns = `id, status, started_at, pot, winner, winning_index, request_id, created_at, settled_at`

func scanRound(row pgx.Row) (*models.Round, error) {
	var round models.Round
	err := row.Scan(
		&round.ID,
		&round.Status,
		&round.StartedAt,
		&round.Pot,
		&round.Winner,
		&round.WinningIndex,
		&round.RequestID,
		&round.CreatedAt,
		&round.SettledAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}
	return &round, nil
}

// Create inserts a new round and assigns its id
func (r *RoundRepository) Create(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds (status, started_at, pot)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, round.Status, round.StartedAt, round.Pot).Scan(
		&round.ID,
		&round.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}

	return nil
}

// GetByID retrieves a round by its id
func (r *RoundRepository) GetByID(ctx context.Context, id int64) (*models.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM rounds WHERE id = $1`, roundColumns)
	return scanRound(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a round locked for the current transaction
func (r *RoundRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM rounds WHERE id = $1 FOR UPDATE`, roundColumns)
	return scanRound(r.q.QueryRow(ctx, query, id))
}

// GetCurrent returns the single unsettled round, or nil if none exists
func (r *RoundRepository) GetCurrent(ctx context.Context) (*models.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM rounds WHERE status <> $1`, roundColumns)
	return scanRound(r.q.QueryRow(ctx, query, models.StatusSettled))
}

// GetCurrentForUpdate returns the unsettled round locked for the transaction
func (r *RoundRepository) GetCurrentForUpdate(ctx context.Context) (*models.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM rounds WHERE status <> $1 FOR UPDATE`, roundColumns)
	return scanRound(r.q.QueryRow(ctx, query, models.StatusSettled))
}

// Update persists status, timing, pot, winner and request id
func (r *RoundRepository) Update(ctx context.Context, round *models.Round) error {
	query := `
		UPDATE rounds
		SET status = $1, started_at = $2, pot = $3, winner = $4,
		    winning_index = $5, request_id = $6, settled_at = $7
		WHERE id = $8
	`

	result, err := r.q.Exec(ctx, query,
		round.Status,
		round.StartedAt,
		round.Pot,
		round.Winner,
		round.WinningIndex,
		round.RequestID,
		round.SettledAt,
		round.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update round %d: %w", round.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("round %d not found", round.ID)
	}

	return nil
}

// AddEntry appends a paid entry to a round
func (r *RoundRepository) AddEntry(ctx context.Context, entry *models.RoundEntry) error {
	query := `
		INSERT INTO round_entries (round_id, player, amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, entry.RoundID, entry.Player, entry.Amount).Scan(
		&entry.ID,
		&entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add entry to round %d: %w", entry.RoundID, err)
	}

	return nil
}

// GetEntries returns a round's entries in entry order
func (r *RoundRepository) GetEntries(ctx context.Context, roundID int64) ([]*models.RoundEntry, error) {
	query := `
		SELECT id, round_id, player, amount, created_at
		FROM round_entries
		WHERE round_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var entries []*models.RoundEntry
	for rows.Next() {
		var entry models.RoundEntry
		err := rows.Scan(&entry.ID, &entry.RoundID, &entry.Player, &entry.Amount, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate round entries: %w", err)
	}

	return entries, nil
}

// CountEntries returns the number of entries in a round
func (r *RoundRepository) CountEntries(ctx context.Context, roundID int64) (int, error) {
	query := `SELECT COUNT(*) FROM round_entries WHERE round_id = $1`

	var count int
	if err := r.q.QueryRow(ctx, query, roundID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries for round %d: %w", roundID, err)
	}

	return count, nil
}

// IncrementPot adds an entry's stake to the round pot
func (r *RoundRepository) IncrementPot(ctx context.Context, roundID int64, amount int64) error {
	query := `UPDATE rounds SET pot = pot + $1 WHERE id = $2`

	result, err := r.q.Exec(ctx, query, amount, roundID)
	if err != nil {
		return fmt.Errorf("failed to increment pot for round %d: %w", roundID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("round %d not found", roundID)
	}

	return nil
}

// CreateRequestIndex maps a request id to a round id
func (r *RoundRepository) CreateRequestIndex(ctx context.Context, requestID string, roundID int64) error {
	query := `INSERT INTO round_requests (request_id, round_id) VALUES ($1, $2)`

	if _, err := r.q.Exec(ctx, query, requestID, roundID); err != nil {
		return fmt.Errorf("failed to index request %s for round %d: %w", requestID, roundID, err)
	}

	return nil
}

// GetRoundIDByRequest resolves the request index; zero means no entry
func (r *RoundRepository) GetRoundIDByRequest(ctx context.Context, requestID string) (int64, error) {
	query := `SELECT round_id FROM round_requests WHERE request_id = $1`

	var roundID int64
	err := r.q.QueryRow(ctx, query, requestID).Scan(&roundID)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve request %s: %w", requestID, err)
	}

	return roundID, nil
}

// DeleteRequestIndex removes the request index entry on settlement
func (r *RoundRepository) DeleteRequestIndex(ctx context.Context, requestID string) error {
	query := `DELETE FROM round_requests WHERE request_id = $1`

	if _, err := r.q.Exec(ctx, query, requestID); err != nil {
		return fmt.Errorf("failed to delete request index %s: %w", requestID, err)
	}

	return nil
}
