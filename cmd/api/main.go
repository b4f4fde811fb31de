package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/tidesmedia/newsreach-backend/api/routes"
	"github.com/tidesmedia/newsreach-backend/internal/cache"
	"github.com/tidesmedia/newsreach-backend/internal/config"
	"github.com/tidesmedia/newsreach-backend/internal/handlers"
	"github.com/tidesmedia/newsreach-backend/internal/metrics"
	"github.com/tidesmedia/newsreach-backend/internal/repositories"
	mongorepo "github.com/tidesmedia/newsreach-backend/internal/repositories/mongodb"
	"github.com/tidesmedia/newsreach-backend/internal/services"
	"github.com/tidesmedia/newsreach-backend/pkg/mongodb"
	"github.com/tidesmedia/newsreach-backend/pkg/push"
	redisclient "github.com/tidesmedia/newsreach-backend/pkg/redis"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to create MongoDB indexes")
	}

	// Redis is optional: without it the rate limiter fails open and profile
	// reads skip the cache.
	var viewCache *cache.Cache
	redisConn, err := redisclient.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, rate limiting fails open")
		viewCache = cache.New(nil)
	} else {
		viewCache = cache.New(redisConn)
		defer redisConn.Close()
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	var pointsRepo repositories.UserPointsRepository = mongorepo.NewUserPointsRepository(db)
	var txRepo repositories.PointTransactionRepository = mongorepo.NewPointTransactionRepository(db)
	var badgeRepo repositories.BadgeRepository = mongorepo.NewBadgeRepository(db)
	var userBadgeRepo repositories.UserBadgeRepository = mongorepo.NewUserBadgeRepository(db)
	var notificationRepo repositories.NotificationRepository = mongorepo.NewNotificationRepository(db)

	var pushGateway push.Gateway
	if cfg.Push.MockGateway {
		pushGateway = push.NewMockGateway()
	} else {
		pushGateway = push.NewHTTPGateway(cfg.Push.BaseURL, cfg.Push.APIKey)
	}

	gamificationConfig := services.DefaultGamificationConfig()
	rateLimiter := services.NewRateLimiter(viewCache, gamificationConfig, logger)
	badgeService := services.NewBadgeService(badgeRepo, userBadgeRepo, pointsRepo, txRepo, notificationRepo, pushGateway, logger)
	pointsService := services.NewPointsService(pointsRepo, txRepo, rateLimiter, badgeService, viewCache, gamificationConfig, logger)
	profileService := services.NewProfileService(pointsRepo, userBadgeRepo, badgeRepo, viewCache, gamificationConfig, logger)
	notificationService := services.NewNotificationCenterService(notificationRepo)

	handlerDeps := routes.HandlerDependencies{
		GamificationHandler: handlers.NewGamificationHandler(pointsService, profileService, badgeService, gamificationConfig),
		BadgeHandler:        handlers.NewBadgeHandler(badgeRepo),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
	}

	router := routes.SetupRouter(cfg, logger, registry, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("server exiting")
}
