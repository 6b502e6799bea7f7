package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/questfit/questfit-server/internal/config"
	"github.com/questfit/questfit-server/internal/handlers"
	"github.com/questfit/questfit-server/internal/logger"
	"github.com/questfit/questfit-server/internal/repository"
	"github.com/questfit/questfit-server/internal/repository/memory"
	redisrepo "github.com/questfit/questfit-server/internal/repository/redis"
	"github.com/questfit/questfit-server/internal/repository/sqlite"
	"github.com/questfit/questfit-server/internal/router"
	"github.com/questfit/questfit-server/internal/server"
	"github.com/questfit/questfit-server/internal/service"
	"github.com/questfit/questfit-server/internal/service/provider"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.AppEnv)

	db, err := sql.Open("sqlite3", cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open account database")
	}
	defer db.Close()

	accountRepo := sqlite.NewSQLiteAccountRepository(db)
	if err := accountRepo.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate account schema")
	}

	var (
		linkStateRepo repository.LinkStateRepository
		sessionRepo   repository.SessionRepository
	)
	if cfg.RedisSettings.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisSettings.Address,
			Password: cfg.RedisSettings.Password,
			DB:       cfg.RedisSettings.DB,
		})
		linkStateRepo = redisrepo.NewRedisLinkStateRepository(redisClient, cfg.Link.StateTTL)
		sessionRepo = redisrepo.NewRedisSessionRepository(redisClient)
	} else {
		memLinks := memory.NewMemoryLinkStateRepository(cfg.Link.StateTTL)
		memLinks.StartSweeper(cfg.Link.SweepInterval)
		defer memLinks.StopSweeper()
		linkStateRepo = memLinks
		sessionRepo = memory.NewMemorySessionRepository()
	}

	tokenService := service.NewStageTokenService(cfg.JWTSecret)
	sessionService := service.NewSessionService(sessionRepo, tokenService, cfg.Link.SessionTokenTTL)

	verifier, err := service.NewFirebaseVerifier(context.Background(), cfg.FirebaseProjectID, accountRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize assertion verifier")
	}

	fitbitProvider := provider.NewFitbitProvider(cfg.OAuthProviders["FITBIT"])
	githubProvider := provider.NewGitHubProvider(cfg.OAuthProviders["GITHUB"])

	linkService := service.NewLinkService(
		verifier,
		tokenService,
		fitbitProvider,
		githubProvider,
		linkStateRepo,
		accountRepo,
		sessionService,
		cfg.Link.PrimaryTokenTTL,
		cfg.Link.SecondFactorTokenTTL,
	)

	app := server.New()
	router.SetupLinkRoutes(app, handlers.NewLinkHandler(linkService, cfg))
	router.SetupSessionRoutes(app, handlers.NewSessionHandler(sessionService), cfg.JWTSecret)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := app.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-quit
	log.Info().Msg("Shutting down server...")

	if err := app.Shutdown(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server stopped gracefully")
}
