package handlers

import (
	"errors"
	"net/http"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InitStakePool creates a new staking farm
func InitStakePool(c *gin.Context) {
	var params business.InitStakePoolParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := business.InitStakePool(params)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pool)
}

// GetStakePools returns all stake pools, newest first
func GetStakePools(c *gin.Context) {
	var pools []models.StakePool
	if err := dbconfig.DB.Order("id desc").Find(&pools).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pools)
}

// GetStakePool returns a single stake pool by ID
func GetStakePool(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}

	var pool models.StakePool
	if err := dbconfig.DB.First(&pool, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stake pool not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pool)
}

// GetStaker returns one user's position in a stake pool
func GetStaker(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}

	var staker models.Staker
	err := dbconfig.DB.Where("stake_pool_id = ? AND address = ?", id, c.Param("address")).First(&staker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "staker not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, staker)
}

// FundReward deposits reward tokens into the pool's reward pot
func FundReward(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := business.FundReward(id, req.Address, req.Amount)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

// AddReward tops up the reward pot, owner only
func AddReward(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := business.AddReward(id, req.Address, req.Amount)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

// Stake deposits stake tokens into the farm
func Stake(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staker, err := business.Stake(id, req.Address, req.Amount)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, staker)
}

// Unstake returns staked tokens to the staker
func Unstake(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staker, err := business.Unstake(id, req.Address, req.Amount)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, staker)
}

// ClaimReward pays out the staker's accumulated reward
func ClaimReward(c *gin.Context) {
	id, ok := parsePoolID(c)
	if !ok {
		return
	}
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reward, err := business.ClaimReward(id, req.Address)
	if err != nil {
		respondBusinessError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reward": reward})
}
