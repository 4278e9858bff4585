package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	"launchcontrol/pkg/vault"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// statusForBusinessError maps a settlement guard failure onto an HTTP status:
// 400 for validation and timing, 403 for authorization, 409 for state and
// capacity conflicts, 422 for exhausted adjustment limits.
func statusForBusinessError(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, business.ErrInvalidAmount),
		errors.Is(err, business.ErrInvalidPercentage),
		errors.Is(err, business.ErrInvalidFee),
		errors.Is(err, business.ErrInvalidTimeOrder),
		errors.Is(err, business.ErrInvalidCapOrder),
		errors.Is(err, business.ErrPhaseClosed):
		return http.StatusBadRequest
	case errors.Is(err, business.ErrNotOwner),
		errors.Is(err, vault.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, business.ErrExceedsEarlyCap),
		errors.Is(err, business.ErrExceedsUserCap),
		errors.Is(err, business.ErrNotFunded),
		errors.Is(err, business.ErrNotClaimable),
		errors.Is(err, business.ErrNothingToClaim),
		errors.Is(err, business.ErrFullyClaimed),
		errors.Is(err, business.ErrNotCancelled),
		errors.Is(err, business.ErrInsufficientStake),
		errors.Is(err, business.ErrInsufficientStaked),
		errors.Is(err, business.ErrExceedsWithdrawable),
		errors.Is(err, business.ErrRewardNotFunded),
		errors.Is(err, vault.ErrInsufficientBalance),
		errors.Is(err, vault.ErrUnknownAccount):
		return http.StatusConflict
	case errors.Is(err, business.ErrTgeAttemptsExhausted),
		errors.Is(err, business.ErrTgeOutsideWindow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondBusinessError(c *gin.Context, err error) {
	c.JSON(statusForBusinessError(err), gin.H{"error": err.Error()})
}

func parsePoolID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pool id"})
		return 0, false
	}
	return uint(id), true
}

// AmountRequest is the common body for funding, purchase and withdrawal calls.
type AmountRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  uint64 `json:"amount" binding:"required"`
}

// AddressRequest carries just the acting address.
type AddressRequest struct {
	Address string `json:"address" binding:"required"`
}

// CreateLaunchPool creates a new launch pool
func CreateLaunchPool(c *gin.Context) {
	var params business.CreatePoolParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := business.CreateLaunchPool(params)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pool)
}

// GetLaunchPools returns all launch pools, newest first
func GetLaunchPools(c *gin.Context) {
	var pools []models.LaunchPool
	if err := dbconfig.DB.Order("id desc").Find(&pools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pools)
}

// GetLaunchPool returns a single launch pool by ID
func GetLaunchPool(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}

	var pool models.LaunchPool
	if err := dbconfig.DB.First(&pool, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pool not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pool)
}

// GetLaunchPoolBuyer returns one buyer's position in a pool
func GetLaunchPoolBuyer(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}

	var buyer models.Buyer
	err := dbconfig.DB.Where("pool_id = ? AND address = ?", id, c.Param("address")).First(&buyer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "buyer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, buyer)
}

// FundOffer deposits offered tokens into the pool's offer vault
func FundOffer(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := business.FundOffer(id, req.Address, req.Amount)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

// UpdateTgeDate moves the TGE date within the bounded adjustment window
func UpdateTgeDate(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req struct {
		Address string `json:"address" binding:"required"`
		TgeDate int64  `json:"tge_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := business.UpdateTgeDate(id, req.Address, req.TgeDate)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

// UpdatePhaseTimes moves the early and open pool close times
func UpdatePhaseTimes(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req struct {
		Address            string `json:"address" binding:"required"`
		EarlyPoolCloseTime int64  `json:"early_pool_close_time" binding:"required"`
		OpenPoolCloseTime  int64  `json:"open_pool_close_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := business.UpdatePhaseTimes(id, req.Address, req.EarlyPoolCloseTime, req.OpenPoolCloseTime)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

// MakeClaimable opens vesting claims for a pool
func MakeClaimable(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := business.MakeClaimable(id, req.Address)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

// CancelPool flags a pool as cancelled, enabling the withdrawal path
func CancelPool(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := business.CancelPool(id, req.Address)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

// BuyEarly settles an early-access purchase
func BuyEarly(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyer, err := business.BuyEarly(id, req.Address, req.Amount)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, buyer)
}

// BuyOpen settles an open-pool purchase
func BuyOpen(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyer, err := business.BuyOpen(id, req.Address, req.Amount)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, buyer)
}

// ClaimOffer pays out the currently vested portion of a buyer's entitlement
func ClaimOffer(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claimed, err := business.ClaimOffer(id, req.Address)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claimed": claimed})
}

// WithdrawOffer refunds offered tokens to the owner of a cancelled pool
func WithdrawOffer(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := business.WithdrawOffer(id, req.Address, req.Amount)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

// WithdrawPurchase refunds purchase tokens to a buyer of a cancelled pool
func WithdrawPurchase(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyer, err := business.WithdrawPurchase(id, req.Address, req.Amount)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, buyer)
}

// GetPoolTransfers returns the fund transfer records of a launch pool
func GetPoolTransfers(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}

	var records []models.FundTransferRecord
	err := dbconfig.DB.Where("pool_type = ? AND pool_id = ?", "launchpad", id).
		Order("id desc").Find(&records).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}
