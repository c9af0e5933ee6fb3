package api

import (
	"net/http"
	"time"

	"playvault/service"

	"github.com/gin-gonic/gin"
)

// GameParams is the public parameter set exposed on the config endpoint.
type GameParams struct {
	MinStake      int64
	MaxStake      int64
	EntranceFee   int64
	RoundInterval time.Duration
}

func SetupRouter(betHandler *BetHandler, raffleHandler *RaffleHandler, vaultHandler *VaultHandler, params GameParams) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/bets", betHandler.PlaceBet)
		api.GET("/bets/:id", betHandler.GetBet)
		api.GET("/players/:player/bets", betHandler.GetPlayerBets)

		api.POST("/raffle/entries", raffleHandler.Enter)
		api.GET("/raffle/current", raffleHandler.GetCurrent)
		api.GET("/raffle/rounds/:id", raffleHandler.GetRound)
		api.GET("/raffle/trigger", raffleHandler.CheckTrigger)
		api.POST("/raffle/trigger", raffleHandler.PerformTrigger)

		api.GET("/vault", vaultHandler.GetState)
		api.GET("/vault/operations", vaultHandler.GetOperations)
		api.POST("/vault/deposits", vaultHandler.Deposit)
		api.POST("/vault/authorize", vaultHandler.Authorize)
		api.POST("/vault/ceiling", vaultHandler.SetCeiling)
		api.POST("/vault/pause", vaultHandler.Pause)
		api.POST("/vault/unpause", vaultHandler.Unpause)
		api.POST("/vault/withdraw", vaultHandler.Withdraw)

		api.GET("/config", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"minStake":         params.MinStake,
				"maxStake":         params.MaxStake,
				"entranceFee":      params.EntranceFee,
				"roundInterval":    params.RoundInterval.String(),
				"diceSides":        service.DiceSides,
				"payoutMultiplier": service.PayoutMultiplier,
				"houseEdgeBips":    service.HouseEdgeBips,
			})
		})
	}

	return r
}
