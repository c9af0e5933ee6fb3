package repository

import (
	"context"
	"testing"

	"playvault/models"
	"playvault/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultRepository_State(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewVaultRepository(testDB.DB)
	ctx := context.Background()

	t.Run("seeded state", func(t *testing.T) {
		state, err := repo.GetState(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), state.Balance)
		assert.Equal(t, int64(0), state.PayoutCeiling)
		assert.False(t, state.Paused)
	})

	t.Run("add and deduct balance", func(t *testing.T) {
		require.NoError(t, repo.AddBalance(ctx, 10000))
		require.NoError(t, repo.DeductBalance(ctx, 4000))

		state, err := repo.GetState(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(6000), state.Balance)
	})

	t.Run("deduct beyond balance fails atomically", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 1000000)
		assert.ErrorIs(t, err, models.ErrInsufficientBalance)

		state, err := repo.GetState(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(6000), state.Balance)
	})

	t.Run("ceiling and pause", func(t *testing.T) {
		require.NoError(t, repo.SetCeiling(ctx, 5000))
		require.NoError(t, repo.SetPaused(ctx, true))

		state, err := repo.GetState(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), state.PayoutCeiling)
		assert.True(t, state.Paused)
	})
}

func TestVaultRepository_AuthorizedCallers(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewVaultRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown caller is unauthorized", func(t *testing.T) {
		authorized, err := repo.IsAuthorized(ctx, "stranger")
		require.NoError(t, err)
		assert.False(t, authorized)
	})

	t.Run("grant and revoke", func(t *testing.T) {
		require.NoError(t, repo.SetAuthorized(ctx, "betting-game", true))

		authorized, err := repo.IsAuthorized(ctx, "betting-game")
		require.NoError(t, err)
		assert.True(t, authorized)

		require.NoError(t, repo.SetAuthorized(ctx, "betting-game", false))

		authorized, err = repo.IsAuthorized(ctx, "betting-game")
		require.NoError(t, err)
		assert.False(t, authorized)
	})
}

func TestVaultRepository_OperationsLedger(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewVaultRepository(testDB.DB)
	ctx := context.Background()

	deposit := &models.VaultOperation{
		Kind:         models.OperationDeposit,
		CallerID:     "alice",
		Counterparty: "alice",
		Amount:       1000,
	}
	require.NoError(t, repo.RecordOperation(ctx, deposit))
	assert.NotZero(t, deposit.ID)

	payout := &models.VaultOperation{
		Kind:         models.OperationPayout,
		CallerID:     "betting-game",
		Counterparty: "alice",
		Amount:       5880,
	}
	require.NoError(t, repo.RecordOperation(ctx, payout))

	ops, err := repo.GetOperations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	// newest first
	assert.Equal(t, models.OperationPayout, ops[0].Kind)
	assert.Equal(t, models.OperationDeposit, ops[1].Kind)
}
