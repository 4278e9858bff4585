package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupLaunchpadRoutes sets up all routes related to launch pool management
func SetupLaunchpadRoutes(r *gin.Engine) {
	// Local-mode only; rejected when the on-chain vault is active
	r.POST("/faucet", handlers.Faucet)

	launchpad := r.Group("/launchpad")
	{
		launchpad.POST("/pools", handlers.CreateLaunchPool)
		launchpad.GET("/pools", handlers.GetLaunchPools)
		launchpad.GET("/pools/:id", handlers.GetLaunchPool)
		launchpad.GET("/pools/:id/buyers/:address", handlers.GetLaunchPoolBuyer)
		launchpad.GET("/pools/:id/transfers", handlers.GetPoolTransfers)
		launchpad.GET("/pools/:id/events", handlers.StreamPoolEvents)

		launchpad.POST("/pools/:id/fund-offer", handlers.FundOffer)
		launchpad.POST("/pools/:id/tge-date", handlers.UpdateTgeDate)
		launchpad.POST("/pools/:id/times", handlers.UpdatePhaseTimes)
		launchpad.POST("/pools/:id/claimable", handlers.MakeClaimable)
		launchpad.POST("/pools/:id/cancel", handlers.CancelPool)

		launchpad.POST("/pools/:id/buy-early", handlers.BuyEarly)
		launchpad.POST("/pools/:id/buy-open", handlers.BuyOpen)
		launchpad.POST("/pools/:id/claim-offer", handlers.ClaimOffer)
		launchpad.POST("/pools/:id/withdraw-offer", handlers.WithdrawOffer)
		launchpad.POST("/pools/:id/withdraw-purchase", handlers.WithdrawPurchase)
	}
}
