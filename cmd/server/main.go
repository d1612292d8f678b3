package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/Skyebold/SponsorBlockServer/internal/config"
	"github.com/Skyebold/SponsorBlockServer/internal/db"
	"github.com/Skyebold/SponsorBlockServer/internal/handler"
	"github.com/Skyebold/SponsorBlockServer/internal/metrics"
	"github.com/Skyebold/SponsorBlockServer/internal/middleware"
	"github.com/Skyebold/SponsorBlockServer/internal/repository"
	"github.com/Skyebold/SponsorBlockServer/internal/router"
	"github.com/Skyebold/SponsorBlockServer/internal/service"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "sponsorblock-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	metrics.Init(pool)

	segmentRepo := repository.NewSegmentRepo(pool)
	lockRepo := repository.NewLockRepo(pool)
	userRepo := repository.NewUserRepo(pool)

	trust := service.NewTrustService(userRepo)
	segments := service.NewSegmentService(segmentRepo, lockRepo, trust, cache, cfg.GlobalSalt)
	locks := service.NewLockService(lockRepo, trust)
	users := service.NewUserService(trust)

	worker := service.NewVoteWorker(pool, cache)
	go worker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "SponsorBlock Description Segments API",
		ServerHeader: "SponsorBlock",
	})

	router.Setup(app, &router.Handlers{
		Segment: handler.NewSegmentHandler(segments),
		Lock:    handler.NewLockHandler(locks),
		User:    handler.NewUserHandler(users),
		Health:  handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
