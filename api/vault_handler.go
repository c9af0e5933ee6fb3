package api

import (
	"net/http"
	"strconv"

	"playvault/service"

	"github.com/gin-gonic/gin"
)

// adminKeyHeader carries the administrator capability on admin endpoints.
// The key is checked by the vault service, not here; the handler just
// forwards whatever the caller presented.
const adminKeyHeader = "X-Admin-Key"

type VaultHandler struct {
	svc service.VaultService
}

func NewVaultHandler(svc service.VaultService) *VaultHandler {
	return &VaultHandler{svc: svc}
}

// GET /api/vault
func (h *VaultHandler) GetState(c *gin.Context) {
	state, err := h.svc.GetState(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":       state.Balance,
		"payoutCeiling": state.PayoutCeiling,
		"paused":        state.Paused,
	})
}

// GET /api/vault/operations
func (h *VaultHandler) GetOperations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	ops, err := h.svc.GetOperations(c.Request.Context(), limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": ops})
}

type depositRequest struct {
	Depositor string `json:"depositor" binding:"required"`
	Amount    int64  `json:"amount" binding:"required"`
}

// POST /api/vault/deposits
func (h *VaultHandler) Deposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	balance, err := h.svc.Deposit(c.Request.Context(), req.Depositor, req.Amount)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"balance": balance})
}

type authorizeRequest struct {
	CallerID string `json:"callerId" binding:"required"`
	Allowed  *bool  `json:"allowed" binding:"required"`
}

// POST /api/vault/authorize
func (h *VaultHandler) Authorize(c *gin.Context) {
	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.Authorize(c.Request.Context(), c.GetHeader(adminKeyHeader), req.CallerID, *req.Allowed)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"callerId": req.CallerID, "allowed": *req.Allowed})
}

type ceilingRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

// POST /api/vault/ceiling
func (h *VaultHandler) SetCeiling(c *gin.Context) {
	var req ceilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.SetCeiling(c.Request.Context(), c.GetHeader(adminKeyHeader), *req.Amount)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ceiling": *req.Amount})
}

// POST /api/vault/pause
func (h *VaultHandler) Pause(c *gin.Context) {
	if err := h.svc.Pause(c.Request.Context(), c.GetHeader(adminKeyHeader)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

// POST /api/vault/unpause
func (h *VaultHandler) Unpause(c *gin.Context) {
	if err := h.svc.Unpause(c.Request.Context(), c.GetHeader(adminKeyHeader)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

type withdrawRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Amount    int64  `json:"amount" binding:"required"`
}

// POST /api/vault/withdraw
func (h *VaultHandler) Withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.AdminWithdraw(c.Request.Context(), c.GetHeader(adminKeyHeader), req.Recipient, req.Amount)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipient": req.Recipient, "amount": req.Amount})
}
