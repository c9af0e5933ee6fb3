package api

import (
	"net/http"
	"strconv"

	"playvault/service"

	"github.com/gin-gonic/gin"
)

type BetHandler struct {
	svc service.BettingService
}

func NewBetHandler(svc service.BettingService) *BetHandler {
	return &BetHandler{svc: svc}
}

type placeBetRequest struct {
	Player string `json:"player" binding:"required"`
	Choice int    `json:"choice" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
}

// POST /api/bets
func (h *BetHandler) PlaceBet(c *gin.Context) {
	var req placeBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.svc.PlaceBet(c.Request.Context(), req.Player, req.Choice, req.Amount)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"betId":     receipt.BetID,
		"requestId": receipt.RequestID,
		"amount":    receipt.Amount,
		"choice":    receipt.Choice,
	})
}

// GET /api/bets/:id
func (h *BetHandler) GetBet(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet id"})
		return
	}

	bet, err := h.svc.GetBet(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if bet == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "bet not found"})
		return
	}
	c.JSON(http.StatusOK, bet)
}

// GET /api/players/:player/bets
func (h *BetHandler) GetPlayerBets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	bets, err := h.svc.GetPlayerBets(c.Request.Context(), c.Param("player"), limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": bets})
}
