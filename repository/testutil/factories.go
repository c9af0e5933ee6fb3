package testutil

import (
	"playvault/models"
)

// CreateTestBet creates a test bet with default values
func CreateTestBet(player string, choice int) *models.Bet {
	return &models.Bet{
		Player: player,
		Amount: 1000,
		Choice: choice,
		Status: models.StatusOpen,
	}
}

// CreateTestBetWithAmount creates a test bet with a specific stake
func CreateTestBetWithAmount(player string, choice int, amount int64) *models.Bet {
	bet := CreateTestBet(player, choice)
	bet.Amount = amount
	return bet
}

// CreateTestEntry creates a test raffle entry
func CreateTestEntry(roundID int64, player string, amount int64) *models.RoundEntry {
	return &models.RoundEntry{
		RoundID: roundID,
		Player:  player,
		Amount:  amount,
	}
}

// CreateTestRequest creates a pending randomness request
func CreateTestRequest(requestID, consumer string) *models.RandomnessRequest {
	return &models.RandomnessRequest{
		RequestID: requestID,
		Consumer:  consumer,
	}
}
