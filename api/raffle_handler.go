package api

import (
	"errors"
	"net/http"
	"strconv"

	"playvault/models"
	"playvault/service"

	"github.com/gin-gonic/gin"
)

type RaffleHandler struct {
	svc service.RaffleService
}

func NewRaffleHandler(svc service.RaffleService) *RaffleHandler {
	return &RaffleHandler{svc: svc}
}

type enterRequest struct {
	Player string `json:"player" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
}

// POST /api/raffle/entries
func (h *RaffleHandler) Enter(c *gin.Context) {
	var req enterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.svc.Enter(c.Request.Context(), req.Player, req.Amount)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"roundId": round.ID,
		"pot":     round.Pot,
	})
}

// GET /api/raffle/current
func (h *RaffleHandler) GetCurrent(c *gin.Context) {
	info, err := h.svc.GetCurrentRound(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if info == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active round"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": info.Round, "entries": info.Entries})
}

// GET /api/raffle/rounds/:id
func (h *RaffleHandler) GetRound(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	info, err := h.svc.GetRound(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if info == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "round not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": info.Round, "entries": info.Entries})
}

// GET /api/raffle/trigger
func (h *RaffleHandler) CheckTrigger(c *gin.Context) {
	check, err := h.svc.CheckTrigger(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ready":    check.Ready,
		"status":   check.Status,
		"entrants": check.Entrants,
		"pot":      check.Pot,
		"elapsed":  check.Elapsed.String(),
	})
}

// POST /api/raffle/trigger
func (h *RaffleHandler) PerformTrigger(c *gin.Context) {
	err := h.svc.PerformTrigger(c.Request.Context())
	if err != nil {
		var notNeeded *models.TriggerNotNeededError
		if errors.As(err, &notNeeded) {
			c.JSON(http.StatusOK, gin.H{
				"triggered": false,
				"status":    notNeeded.Status,
				"entrants":  notNeeded.Entrants,
				"pot":       notNeeded.Pot,
			})
			return
		}
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"triggered": true})
}
