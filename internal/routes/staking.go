package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupStakingRoutes sets up all routes related to stake pool management
func SetupStakingRoutes(r *gin.Engine) {
	staking := r.Group("/staking")
	{
		staking.POST("/pools", handlers.InitStakePool)
		staking.GET("/pools", handlers.GetStakePools)
		staking.GET("/pools/:id", handlers.GetStakePool)
		staking.GET("/pools/:id/stakers/:address", handlers.GetStaker)

		staking.POST("/pools/:id/fund-reward", handlers.FundReward)
		staking.POST("/pools/:id/add-reward", handlers.AddReward)
		staking.POST("/pools/:id/stake", handlers.Stake)
		staking.POST("/pools/:id/unstake", handlers.Unstake)
		staking.POST("/pools/:id/claim-reward", handlers.ClaimReward)
	}
}
