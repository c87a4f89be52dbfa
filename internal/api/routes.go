package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/cardvault/backend/internal/api/handlers"
	"github.com/cardvault/backend/internal/config"
	"github.com/cardvault/backend/internal/services"
)

func SetupRouter(cfg *config.Config, db *gorm.DB, catalog services.CardCatalog) *gin.Engine {
	router := gin.Default()
	router.Use(Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"}
	router.Use(cors.New(corsConfig))

	collectionService := services.NewCollectionService(db, catalog)
	valuationService := services.NewValuationService(db)
	achievementService := services.NewAchievementService(db)
	wishlistService := services.NewWishlistService(db, catalog)
	snapshotService := services.NewSnapshotService(db, valuationService)

	collectionHandler := handlers.NewCollectionHandler(db, collectionService, valuationService, achievementService, wishlistService)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	cardHandler := handlers.NewCardHandler(catalog)
	userHandler := handlers.NewUserHandler(db)

	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.GET("/search", cardHandler.SearchCards)
			cards.GET("/:apiId", cardHandler.GetCard)
		}

		users := api.Group("/users")
		{
			users.POST("", userHandler.Create)
			users.GET("/:id", userHandler.Get)
		}

		collection := api.Group("/collection", RequireUser())
		{
			collection.GET("", collectionHandler.GetCollection)
			collection.POST("", collectionHandler.AddToCollection)
			collection.GET("/summary", collectionHandler.GetSummary)
			collection.GET("/top-cards", collectionHandler.GetTopValueHoldings)
			collection.GET("/rarity/:rarity", collectionHandler.GetByRarity)
			collection.GET("/set/:setName", collectionHandler.GetBySet)
			collection.GET("/:id", collectionHandler.GetHolding)
			collection.PUT("/:id", collectionHandler.UpdateHolding)
			collection.PATCH("/:id/quantity", collectionHandler.SetQuantity)
			collection.DELETE("/:id", collectionHandler.RemoveHolding)
		}

		history := api.Group("/collection-history", RequireUser())
		{
			history.POST("/snapshot", snapshotHandler.RecordSnapshot)
			history.GET("", snapshotHandler.GetHistory)
			history.GET("/since", snapshotHandler.GetHistorySince)
			history.GET("/last-days/:days", snapshotHandler.GetHistoryForLastDays)
		}

		achievements := api.Group("/achievements")
		{
			achievements.GET("", achievementHandler.ListDefinitions)
			achievements.GET("/earned", RequireUser(), achievementHandler.ListEarned)
			achievements.GET("/points", RequireUser(), achievementHandler.GetPoints)
			achievements.POST("/:id/award", RequireUser(), achievementHandler.Award)
		}

		wishlist := api.Group("/wishlist", RequireUser())
		{
			wishlist.GET("", wishlistHandler.List)
			wishlist.POST("", wishlistHandler.Add)
			wishlist.PUT("/:id", wishlistHandler.Update)
			wishlist.DELETE("/:id", wishlistHandler.Remove)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
