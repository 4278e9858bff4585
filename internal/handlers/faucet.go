package handlers

import (
	"net/http"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/pkg/vault"

	"github.com/gin-gonic/gin"
)

// Faucet credits a balance in the in-memory ledger. Only available in local
// mode; with the on-chain vault wired the endpoint reports a conflict.
func Faucet(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
		Mint    string `json:"mint" binding:"required"`
		Amount  uint64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ledger, ok := business.Vault.(*vault.MemoryLedger)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "faucet is only available with the in-memory ledger"})
		return
	}

	ledger.Deposit(req.Address, req.Mint, req.Amount)
	c.JSON(http.StatusOK, gin.H{
		"address": req.Address,
		"mint":    req.Mint,
		"balance": ledger.Balance(req.Address, req.Mint),
	})
}
