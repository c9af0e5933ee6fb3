package worker

import (
	"context"
	"testing"
	"time"

	"playvault/models"

	"github.com/stretchr/testify/mock"
)

type mockRaffleService struct {
	mock.Mock
}

func (m *mockRaffleService) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockRaffleService) Settle(ctx context.Context, callerKey, requestID string, randomWord uint64) error {
	args := m.Called(ctx, callerKey, requestID, randomWord)
	return args.Error(0)
}

func (m *mockRaffleService) Enter(ctx context.Context, player string, amount int64) (*models.Round, error) {
	args := m.Called(ctx, player, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *mockRaffleService) CheckTrigger(ctx context.Context) (*models.TriggerCheck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TriggerCheck), args.Error(1)
}

func (m *mockRaffleService) PerformTrigger(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockRaffleService) GetCurrentRound(ctx context.Context) (*models.RoundInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoundInfo), args.Error(1)
}

func (m *mockRaffleService) GetRound(ctx context.Context, id int64) (*models.RoundInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoundInfo), args.Error(1)
}

func TestKeeper_TickFiresWhenReady(t *testing.T) {
	ctx := context.Background()
	raffle := new(mockRaffleService)
	keeper := NewKeeper(raffle, time.Second, time.Hour)

	raffle.On("CheckTrigger", ctx).Return(&models.TriggerCheck{
		Ready:    true,
		Status:   models.StatusOpen,
		Entrants: 3,
		Pot:      3000,
		Elapsed:  2 * time.Hour,
	}, nil)
	raffle.On("PerformTrigger", ctx).Return(nil)

	keeper.tick(ctx)

	raffle.AssertExpectations(t)
}

func TestKeeper_TickSkipsWhenNotReady(t *testing.T) {
	ctx := context.Background()
	raffle := new(mockRaffleService)
	keeper := NewKeeper(raffle, time.Second, time.Hour)

	raffle.On("CheckTrigger", ctx).Return(&models.TriggerCheck{
		Ready:    false,
		Status:   models.StatusOpen,
		Entrants: 3,
		Elapsed:  10 * time.Minute,
	}, nil)

	keeper.tick(ctx)

	raffle.AssertNotCalled(t, "PerformTrigger", ctx)
}

func TestKeeper_TickResetsEmptyElapsedRound(t *testing.T) {
	ctx := context.Background()
	raffle := new(mockRaffleService)
	keeper := NewKeeper(raffle, time.Second, time.Hour)

	raffle.On("CheckTrigger", ctx).Return(&models.TriggerCheck{
		Ready:    false,
		Status:   models.StatusOpen,
		Entrants: 0,
		Elapsed:  2 * time.Hour,
	}, nil)
	raffle.On("PerformTrigger", ctx).Return(nil)

	keeper.tick(ctx)

	raffle.AssertExpectations(t)
}

func TestKeeper_LostRaceIsNotAnError(t *testing.T) {
	ctx := context.Background()
	raffle := new(mockRaffleService)
	keeper := NewKeeper(raffle, time.Second, time.Hour)

	raffle.On("CheckTrigger", ctx).Return(&models.TriggerCheck{
		Ready:    true,
		Status:   models.StatusOpen,
		Entrants: 3,
		Elapsed:  2 * time.Hour,
	}, nil)
	raffle.On("PerformTrigger", ctx).Return(&models.TriggerNotNeededError{
		Status: models.StatusAwaitingRandomness,
	})

	// must not panic or retry; the loser of the race just logs and moves on
	keeper.tick(ctx)

	raffle.AssertExpectations(t)
}
