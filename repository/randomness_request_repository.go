package repository

import (
	"context"
	"fmt"

	"playvault/database"
	"playvault/models"

	"github.com/jackc/pgx/v5"
)

// RandomnessRequestRepository implements the service.RandomnessRequestRepository interface
type RandomnessRequestRepository struct {
	q queryable
}

// NewRandomnessRequestRepository creates a new randomness request repository
func NewRandomnessRequestRepository(db *database.DB) *RandomnessRequestRepository {
	return &RandomnessRequestRepository{q: db.Pool}
}

// newRandomnessRequestRepositoryWithTx creates a repository bound to a transaction
func newRandomnessRequestRepositoryWithTx(tx queryable) *RandomnessRequestRepository {
	return &RandomnessRequestRepository{q: tx}
}

// Create records a pending request. The primary key makes writing the same
// request id twice impossible.
func (r *RandomnessRequestRepository) Create(ctx context.Context, req *models.RandomnessRequest) error {
	query := `
		INSERT INTO randomness_requests (request_id, consumer)
		VALUES ($1, $2)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, req.RequestID, req.Consumer).Scan(&req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create randomness request %s: %w", req.RequestID, err)
	}

	return nil
}

// Get returns the pending request, or nil if unknown or already consumed
func (r *RandomnessRequestRepository) Get(ctx context.Context, requestID string) (*models.RandomnessRequest, error) {
	query := `
		SELECT request_id, consumer, created_at
		FROM randomness_requests
		WHERE request_id = $1
	`

	var req models.RandomnessRequest
	err := r.q.QueryRow(ctx, query, requestID).Scan(&req.RequestID, &req.Consumer, &req.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get randomness request %s: %w", requestID, err)
	}

	return &req, nil
}

// Consume deletes the pending request, reporting whether a row existed
func (r *RandomnessRequestRepository) Consume(ctx context.Context, requestID string) (bool, error) {
	query := `DELETE FROM randomness_requests WHERE request_id = $1`

	result, err := r.q.Exec(ctx, query, requestID)
	if err != nil {
		return false, fmt.Errorf("failed to consume randomness request %s: %w", requestID, err)
	}

	return result.RowsAffected() > 0, nil
}
