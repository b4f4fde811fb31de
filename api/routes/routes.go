package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/tidesmedia/newsreach-backend/internal/config"
	"github.com/tidesmedia/newsreach-backend/internal/handlers"
	"github.com/tidesmedia/newsreach-backend/internal/middleware"
)

// HandlerDependencies carries the initialized handlers into the router
type HandlerDependencies struct {
	GamificationHandler *handlers.GamificationHandler
	BadgeHandler        *handlers.BadgeHandler
	NotificationHandler *handlers.NotificationHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, logger zerolog.Logger, registry *prometheus.Registry, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		gamification := protected.Group("/gamification")
		{
			gamification.POST("/award", deps.GamificationHandler.AwardPoints)
			gamification.POST("/streak", deps.GamificationHandler.UpdateStreak)
			gamification.GET("/profile", deps.GamificationHandler.GetProfile)
			gamification.GET("/levels", deps.GamificationHandler.GetLevels)
		}

		protected.GET("/badges", deps.BadgeHandler.GetActiveBadges)

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", deps.NotificationHandler.GetNotifications)
			notifications.GET("/unread-count", deps.NotificationHandler.GetUnreadCount)
			notifications.POST("/:id/read", deps.NotificationHandler.MarkRead)
			notifications.POST("/read-all", deps.NotificationHandler.MarkAllRead)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/badges", deps.BadgeHandler.CreateBadge)
		}
	}

	return router
}
