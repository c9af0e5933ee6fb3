package service

import (
	"context"
	"testing"

	"playvault/events"
	"playvault/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	testProviderKey = "provider-key"
	testVaultCaller = "betting-game"
)

func newBettingMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockVaultRepository, *MockRandomnessRequestRepository, *MockBetRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockVaultRepo := new(MockVaultRepository)
	mockRandomnessRepo := new(MockRandomnessRequestRepository)
	mockBetRepo := new(MockBetRepository)

	bus := events.NewTransactionalBus(events.NewBus())
	mockUoW.SetRepositories(mockVaultRepo, mockRandomnessRepo, mockBetRepo, nil, bus)

	return mockFactory, mockUoW, mockVaultRepo, mockRandomnessRepo, mockBetRepo
}

func testBettingConfig() BettingConfig {
	return BettingConfig{
		MinStake:      100,
		MaxStake:      100000,
		ProviderKey:   testProviderKey,
		VaultCallerID: testVaultCaller,
	}
}

func TestWinPayout(t *testing.T) {
	// stake * 6 * (10000 - 200) / 10000
	assert.Equal(t, int64(5880), WinPayout(1000))
	assert.Equal(t, int64(588), WinPayout(100))
	assert.Equal(t, int64(0), WinPayout(0))
	// integer truncation, never rounding up
	assert.Equal(t, int64(5), WinPayout(1))
}

func TestBettingService_PlaceBet(t *testing.T) {
	ctx := context.Background()

	mockFactory, mockUoW, mockVaultRepo, _, mockBetRepo := newBettingMocks()
	mockRouter := new(MockRandomnessRouter)
	service := NewBettingService(mockFactory, mockRouter, testBettingConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	var created *models.Bet
	mockBetRepo.On("Create", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.Player == "alice" && b.Amount == 1000 && b.Choice == 3 && b.Status == models.StatusOpen
	})).Return(nil).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Bet)
		created.ID = 7
	})

	// stake forwarded to the vault
	mockVaultRepo.On("AddBalance", ctx, int64(1000)).Return(nil)
	mockVaultRepo.On("RecordOperation", ctx, mock.MatchedBy(func(op *models.VaultOperation) bool {
		return op.Kind == models.OperationDeposit && op.CallerID == "alice" && op.Amount == 1000
	})).Return(nil)
	mockVaultRepo.On("GetState", ctx).Return(&models.VaultState{Balance: 1000}, nil)

	mockRouter.On("Request", ctx, mockUoW, "betting-game").Return("req-1", nil)
	mockBetRepo.On("MarkAwaiting", ctx, int64(7), "req-1").Return(nil)
	mockBetRepo.On("CreateRequestIndex", ctx, "req-1", int64(7)).Return(nil)

	receipt, err := service.PlaceBet(ctx, "alice", 3, 1000)

	assert.NoError(t, err)
	assert.NotNil(t, receipt)
	assert.Equal(t, int64(7), receipt.BetID)
	assert.Equal(t, "req-1", receipt.RequestID)
	assert.Equal(t, int64(1000), receipt.Amount)
	assert.Equal(t, 3, receipt.Choice)

	// the entity tracks the row written by MarkAwaiting
	assert.Equal(t, models.StatusAwaitingRandomness, created.Status)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockVaultRepo.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockRouter.AssertExpectations(t)
}

func TestBettingService_PlaceBet_Validation(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockRouter := new(MockRandomnessRouter)
	service := NewBettingService(mockFactory, mockRouter, testBettingConfig())

	_, err := service.PlaceBet(ctx, "", 3, 1000)
	assert.ErrorIs(t, err, models.ErrInvalidRecipient)

	_, err = service.PlaceBet(ctx, "alice", 0, 1000)
	assert.ErrorIs(t, err, models.ErrInvalidChoice)

	_, err = service.PlaceBet(ctx, "alice", 7, 1000)
	assert.ErrorIs(t, err, models.ErrInvalidChoice)

	_, err = service.PlaceBet(ctx, "alice", 3, 99)
	assert.ErrorIs(t, err, models.ErrStakeTooLow)

	_, err = service.PlaceBet(ctx, "alice", 3, 100001)
	assert.ErrorIs(t, err, models.ErrStakeTooHigh)
}

func TestBettingService_Settle_Win(t *testing.T) {
	ctx := context.Background()

	mockFactory, mockUoW, mockVaultRepo, mockRandomnessRepo, mockBetRepo := newBettingMocks()
	mockRouter := new(MockRandomnessRouter)
	service := NewBettingService(mockFactory, mockRouter, testBettingConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRandomnessRepo.On("Consume", ctx, "req-1").Return(true, nil)
	mockBetRepo.On("GetBetIDByRequest", ctx, "req-1").Return(int64(7), nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(&models.Bet{
		ID:     7,
		Player: "alice",
		Amount: 1000,
		Choice: 3,
		Status: models.StatusAwaitingRandomness,
	}, nil)

	// randomWord 14: 14 % 6 = 2, rolled = 3, matches the choice
	mockBetRepo.On("Settle", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.ID == 7 && b.Status == models.StatusSettled && *b.Rolled == 3 && b.Payout == 5880
	})).Return(nil)
	mockBetRepo.On("DeleteRequestIndex", ctx, "req-1").Return(nil)

	mockVaultRepo.On("IsAuthorized", ctx, testVaultCaller).Return(true, nil)
	mockVaultRepo.On("GetStateForUpdate", ctx).Return(&models.VaultState{Balance: 100000}, nil)
	mockVaultRepo.On("DeductBalance", ctx, int64(5880)).Return(nil)
	mockVaultRepo.On("RecordOperation", ctx, mock.MatchedBy(func(op *models.VaultOperation) bool {
		return op.Kind == models.OperationPayout && op.Counterparty == "alice" && op.Amount == 5880
	})).Return(nil)

	err := service.Settle(ctx, testProviderKey, "req-1", 14)
	assert.NoError(t, err)

	mockUoW.AssertExpectations(t)
	mockVaultRepo.AssertExpectations(t)
	mockRandomnessRepo.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}

func TestBettingService_Settle_Loss(t *testing.T) {
	ctx := context.Background()

	mockFactory, mockUoW, mockVaultRepo, mockRandomnessRepo, mockBetRepo := newBettingMocks()
	mockRouter := new(MockRandomnessRouter)
	service := NewBettingService(mockFactory, mockRouter, testBettingConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRandomnessRepo.On("Consume", ctx, "req-1").Return(true, nil)
	mockBetRepo.On("GetBetIDByRequest", ctx, "req-1").Return(int64(7), nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(&models.Bet{
		ID:     7,
		Player: "alice",
		Amount: 1000,
		Choice: 3,
		Status: models.StatusAwaitingRandomness,
	}, nil)

	// randomWord 4: 4 % 6 = 4, rolled = 5, misses the choice
	mockBetRepo.On("Settle", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.ID == 7 && b.Status == models.StatusSettled && *b.Rolled == 5 && b.Payout == 0
	})).Return(nil)
	mockBetRepo.On("DeleteRequestIndex", ctx, "req-1").Return(nil)

	// a losing bet never touches the vault

	err := service.Settle(ctx, testProviderKey, "req-1", 4)
	assert.NoError(t, err)

	mockUoW.AssertExpectations(t)
	mockVaultRepo.AssertExpectations(t)
	mockRandomnessRepo.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}

func TestBettingService_Settle_WrongKey(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockRouter := new(MockRandomnessRouter)
	service := NewBettingService(mockFactory, mockRouter, testBettingConfig())

	err := service.Settle(ctx, "wrong-key", "req-1", 14)
	assert.ErrorIs(t, err, models.ErrNotProvider)
}

func TestBettingService_Settle_ReplayedRequest(t *testing.T) {
	ctx := context.Background()

	mockFactory, mockUoW, _, mockRandomnessRepo, _ := newBettingMocks()
	mockRouter := new(MockRandomnessRouter)
	service := NewBettingService(mockFactory, mockRouter, testBettingConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// first settlement already deleted the pending row
	mockRandomnessRepo.On("Consume", ctx, "req-1").Return(false, nil)

	err := service.Settle(ctx, testProviderKey, "req-1", 14)
	assert.ErrorIs(t, err, models.ErrUnknownRequest)

	mockUoW.AssertExpectations(t)
	mockRandomnessRepo.AssertExpectations(t)
}

func TestBettingService_Settle_MissingIndex(t *testing.T) {
	ctx := context.Background()

	mockFactory, mockUoW, _, mockRandomnessRepo, mockBetRepo := newBettingMocks()
	mockRouter := new(MockRandomnessRouter)
	service := NewBettingService(mockFactory, mockRouter, testBettingConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRandomnessRepo.On("Consume", ctx, "req-1").Return(true, nil)
	mockBetRepo.On("GetBetIDByRequest", ctx, "req-1").Return(int64(0), nil)

	err := service.Settle(ctx, testProviderKey, "req-1", 14)
	assert.ErrorIs(t, err, models.ErrBetNotFound)

	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}

func TestBettingService_Settle_AlreadySettled(t *testing.T) {
	ctx := context.Background()

	mockFactory, mockUoW, _, mockRandomnessRepo, mockBetRepo := newBettingMocks()
	mockRouter := new(MockRandomnessRouter)
	service := NewBettingService(mockFactory, mockRouter, testBettingConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRandomnessRepo.On("Consume", ctx, "req-1").Return(true, nil)
	mockBetRepo.On("GetBetIDByRequest", ctx, "req-1").Return(int64(7), nil)
	mockBetRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(&models.Bet{
		ID:     7,
		Status: models.StatusSettled,
	}, nil)

	err := service.Settle(ctx, testProviderKey, "req-1", 14)
	assert.ErrorIs(t, err, models.ErrAlreadySettled)

	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}

func TestBettingService_Settle_OutcomeMapping(t *testing.T) {
	ctx := context.Background()

	// rolled = word % 6 + 1
	cases := []struct {
		word   uint64
		rolled int
	}{
		{0, 1},
		{2, 3},
		{5, 6},
		{6, 1},
		{18446744073709551615, 4}, // max uint64 % 6 = 3
	}

	for _, tc := range cases {
		mockFactory, mockUoW, _, mockRandomnessRepo, mockBetRepo := newBettingMocks()
		mockRouter := new(MockRandomnessRouter)
		service := NewBettingService(mockFactory, mockRouter, testBettingConfig())

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)

		mockRandomnessRepo.On("Consume", ctx, "req-1").Return(true, nil)
		mockBetRepo.On("GetBetIDByRequest", ctx, "req-1").Return(int64(7), nil)
		mockBetRepo.On("GetByIDForUpdate", ctx, int64(7)).Return(&models.Bet{
			ID:     7,
			Player: "alice",
			Amount: 1000,
			Choice: 0, // never wins, keeps the vault out of the picture
			Status: models.StatusAwaitingRandomness,
		}, nil)

		expected := tc.rolled
		mockBetRepo.On("Settle", ctx, mock.MatchedBy(func(b *models.Bet) bool {
			return *b.Rolled == expected
		})).Return(nil)
		mockBetRepo.On("DeleteRequestIndex", ctx, "req-1").Return(nil)

		err := service.Settle(ctx, testProviderKey, "req-1", tc.word)
		assert.NoError(t, err, "word %d", tc.word)
		mockBetRepo.AssertExpectations(t)
	}
}
