package service

import (
	"context"

	"playvault/models"

	"github.com/stretchr/testify/mock"
)

// MockVaultRepository is a mock implementation of VaultRepository
type MockVaultRepository struct {
	mock.Mock
}

func (m *MockVaultRepository) GetState(ctx context.Context) (*models.VaultState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VaultState), args.Error(1)
}

func (m *MockVaultRepository) GetStateForUpdate(ctx context.Context) (*models.VaultState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VaultState), args.Error(1)
}

func (m *MockVaultRepository) AddBalance(ctx context.Context, amount int64) error {
	args := m.Called(ctx, amount)
	return args.Error(0)
}

func (m *MockVaultRepository) DeductBalance(ctx context.Context, amount int64) error {
	args := m.Called(ctx, amount)
	return args.Error(0)
}

func (m *MockVaultRepository) SetCeiling(ctx context.Context, amount int64) error {
	args := m.Called(ctx, amount)
	return args.Error(0)
}

func (m *MockVaultRepository) SetPaused(ctx context.Context, paused bool) error {
	args := m.Called(ctx, paused)
	return args.Error(0)
}

func (m *MockVaultRepository) SetAuthorized(ctx context.Context, callerID string, allowed bool) error {
	args := m.Called(ctx, callerID, allowed)
	return args.Error(0)
}

func (m *MockVaultRepository) IsAuthorized(ctx context.Context, callerID string) (bool, error) {
	args := m.Called(ctx, callerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVaultRepository) RecordOperation(ctx context.Context, op *models.VaultOperation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockVaultRepository) GetOperations(ctx context.Context, limit int) ([]*models.VaultOperation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VaultOperation), args.Error(1)
}

// MockRandomnessRequestRepository is a mock implementation of RandomnessRequestRepository
type MockRandomnessRequestRepository struct {
	mock.Mock
}

func (m *MockRandomnessRequestRepository) Create(ctx context.Context, req *models.RandomnessRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRandomnessRequestRepository) Get(ctx context.Context, requestID string) (*models.RandomnessRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RandomnessRequest), args.Error(1)
}

func (m *MockRandomnessRequestRepository) Consume(ctx context.Context, requestID string) (bool, error) {
	args := m.Called(ctx, requestID)
	return args.Bool(0), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByPlayer(ctx context.Context, player string, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, player, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) MarkAwaiting(ctx context.Context, betID int64, requestID string) error {
	args := m.Called(ctx, betID, requestID)
	return args.Error(0)
}

func (m *MockBetRepository) Settle(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) CreateRequestIndex(ctx context.Context, requestID string, betID int64) error {
	args := m.Called(ctx, requestID, betID)
	return args.Error(0)
}

func (m *MockBetRepository) GetBetIDByRequest(ctx context.Context, requestID string) (int64, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBetRepository) DeleteRequestIndex(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

// MockRoundRepository is a mock implementation of RoundRepository
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) Create(ctx context.Context, round *models.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRoundRepository) GetByID(ctx context.Context, id int64) (*models.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetCurrent(ctx context.Context) (*models.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetCurrentForUpdate(ctx context.Context) (*models.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) Update(ctx context.Context, round *models.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRoundRepository) AddEntry(ctx context.Context, entry *models.RoundEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRoundRepository) GetEntries(ctx context.Context, roundID int64) ([]*models.RoundEntry, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RoundEntry), args.Error(1)
}

func (m *MockRoundRepository) CountEntries(ctx context.Context, roundID int64) (int, error) {
	args := m.Called(ctx, roundID)
	return args.Int(0), args.Error(1)
}

func (m *MockRoundRepository) IncrementPot(ctx context.Context, roundID int64, amount int64) error {
	args := m.Called(ctx, roundID, amount)
	return args.Error(0)
}

func (m *MockRoundRepository) CreateRequestIndex(ctx context.Context, requestID string, roundID int64) error {
	args := m.Called(ctx, requestID, roundID)
	return args.Error(0)
}

func (m *MockRoundRepository) GetRoundIDByRequest(ctx context.Context, requestID string) (int64, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoundRepository) DeleteRequestIndex(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

// MockOracle is a mock implementation of Oracle
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) Request(ctx context.Context, req models.OracleRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockRandomnessConsumer is a mock implementation of RandomnessConsumer
type MockRandomnessConsumer struct {
	mock.Mock
}

func (m *MockRandomnessConsumer) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRandomnessConsumer) Settle(ctx context.Context, callerKey, requestID string, randomWord uint64) error {
	args := m.Called(ctx, callerKey, requestID, randomWord)
	return args.Error(0)
}

// MockRandomnessRouter is a mock implementation of RandomnessRouter
type MockRandomnessRouter struct {
	mock.Mock
}

func (m *MockRandomnessRouter) Request(ctx context.Context, uow UnitOfWork, consumer string) (string, error) {
	args := m.Called(ctx, uow, consumer)
	return args.String(0), args.Error(1)
}

func (m *MockRandomnessRouter) Fulfill(ctx context.Context, oracleID, requestID string, randomWords []uint64) error {
	args := m.Called(ctx, oracleID, requestID, randomWords)
	return args.Error(0)
}

func (m *MockRandomnessRouter) RegisterConsumer(consumer RandomnessConsumer) {
	m.Called(consumer)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetRepositories rather than configured per-call.
type MockUnitOfWork struct {
	mock.Mock
	vaultRepo      VaultRepository
	randomnessRepo RandomnessRequestRepository
	betRepo        BetRepository
	roundRepo      RoundRepository
	eventBus       EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(
	vaultRepo VaultRepository,
	randomnessRepo RandomnessRequestRepository,
	betRepo BetRepository,
	roundRepo RoundRepository,
	eventBus EventPublisher,
) {
	m.vaultRepo = vaultRepo
	m.randomnessRepo = randomnessRepo
	m.betRepo = betRepo
	m.roundRepo = roundRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) VaultRepository() VaultRepository {
	return m.vaultRepo
}

func (m *MockUnitOfWork) RandomnessRequestRepository() RandomnessRequestRepository {
	return m.randomnessRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) RoundRepository() RoundRepository {
	return m.roundRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}
