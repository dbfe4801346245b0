package server

import (
	"time"

	model "auction-house/internal/models"
	"auction-house/internal/ws"
	handler "auction-house/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application. hub may
// be nil in tests that do not exercise the realtime surface.
func SetupRouter(
	authService handler.AuthServiceInterface,
	auctionService handler.AuctionServiceInterface,
	biddingService handler.BiddingServiceInterface,
	resolver IdentityResolver,
	hub *ws.Hub,
	probeInterval time.Duration,
) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	authHandler := handler.NewAuthHandler(authService)
	auctionHandler := handler.NewAuctionHandler(auctionService)
	bidHandler := handler.NewBidHandler(biddingService)

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterHandler)
		authRoutes.POST("/login", authHandler.LoginHandler)
	}

	protected := api.Group("", AuthMiddleware(resolver))

	users := protected.Group("/users")
	{
		users.GET("/profile", authHandler.ProfileHandler)
	}

	auctions := protected.Group("/auctions")
	{
		auctions.POST("", RestrictTo(model.RoleSeller), auctionHandler.CreateAuctionHandler)
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.DELETE("/:auction_id", RestrictTo(model.RoleSeller), auctionHandler.DeleteAuctionHandler)
	}

	bids := protected.Group("/bids")
	{
		bids.POST("", RestrictTo(model.RoleBuyer), bidHandler.SubmitBidHandler)
		bids.GET("/auction/:auction_id", bidHandler.GetBidsByAuctionHandler)
		bids.POST("/:bid_id/reveal", bidHandler.RevealBidHandler)
	}

	if hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			ws.ServeWS(hub, probeInterval, c.Writer, c.Request)
		})
	}

	return router
}
