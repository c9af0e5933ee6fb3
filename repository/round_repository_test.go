package repository

import (
	"context"
	"testing"
	"time"

	"playvault/models"
	"playvault/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRepository_CurrentRound(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	// migrations seed one open round
	current, err := repo.GetCurrent(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, models.StatusOpen, current.Status)
	assert.Equal(t, int64(0), current.Pot)
	assert.Nil(t, current.Winner)

	t.Run("one unsettled round at a time", func(t *testing.T) {
		second := &models.Round{Status: models.StatusOpen, StartedAt: time.Now()}
		assert.Error(t, repo.Create(ctx, second))
	})

	t.Run("settle then create successor", func(t *testing.T) {
		winner := "alice"
		index := 0
		now := time.Now()
		current.Status = models.StatusSettled
		current.Winner = &winner
		current.WinningIndex = &index
		current.SettledAt = &now
		require.NoError(t, repo.Update(ctx, current))

		next := &models.Round{Status: models.StatusOpen, StartedAt: now}
		require.NoError(t, repo.Create(ctx, next))
		assert.NotZero(t, next.ID)

		found, err := repo.GetCurrent(ctx)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, next.ID, found.ID)

		settled, err := repo.GetByID(ctx, current.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSettled, settled.Status)
		require.NotNil(t, settled.Winner)
		assert.Equal(t, "alice", *settled.Winner)
		require.NotNil(t, settled.WinningIndex)
		assert.Equal(t, 0, *settled.WinningIndex)
		assert.NotNil(t, settled.SettledAt)
	})

	t.Run("unknown id returns nil", func(t *testing.T) {
		found, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestRoundRepository_Entries(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	round, err := repo.GetCurrent(ctx)
	require.NoError(t, err)
	require.NotNil(t, round)

	t.Run("empty round", func(t *testing.T) {
		count, err := repo.CountEntries(ctx, round.ID)
		require.NoError(t, err)
		assert.Zero(t, count)

		entries, err := repo.GetEntries(ctx, round.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("entries keep insertion order", func(t *testing.T) {
		for _, player := range []string{"alice", "bob", "alice"} {
			entry := testutil.CreateTestEntry(round.ID, player, 500)
			require.NoError(t, repo.AddEntry(ctx, entry))
			require.NoError(t, repo.IncrementPot(ctx, round.ID, entry.Amount))
			assert.NotZero(t, entry.ID)
		}

		entries, err := repo.GetEntries(ctx, round.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "alice", entries[0].Player)
		assert.Equal(t, "bob", entries[1].Player)
		assert.Equal(t, "alice", entries[2].Player)

		count, err := repo.CountEntries(ctx, round.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		updated, err := repo.GetByID(ctx, round.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), updated.Pot)
	})
}

func TestRoundRepository_RequestIndex(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	round, err := repo.GetCurrent(ctx)
	require.NoError(t, err)
	require.NotNil(t, round)

	t.Run("unknown request resolves to zero", func(t *testing.T) {
		roundID, err := repo.GetRoundIDByRequest(ctx, "req-missing")
		require.NoError(t, err)
		assert.Zero(t, roundID)
	})

	t.Run("create resolve delete", func(t *testing.T) {
		require.NoError(t, repo.CreateRequestIndex(ctx, "req-raffle-1", round.ID))

		roundID, err := repo.GetRoundIDByRequest(ctx, "req-raffle-1")
		require.NoError(t, err)
		assert.Equal(t, round.ID, roundID)

		require.NoError(t, repo.DeleteRequestIndex(ctx, "req-raffle-1"))

		roundID, err = repo.GetRoundIDByRequest(ctx, "req-raffle-1")
		require.NoError(t, err)
		assert.Zero(t, roundID)
	})
}
