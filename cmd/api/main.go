package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/events"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(log)

	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if cfg.MigrationsAuto {
		if err := database.RunMigrations(db, cfg.PostgresDSN(), log); err != nil {
			return err
		}
	}

	storage, err := config.NewS3Config(ctx, cfg.S3)
	if err != nil {
		return err
	}
	if cfg.S3.PublicRead {
		if err := storage.SetupBucketPolicy(ctx); err != nil {
			log.Warn("failed to apply public bucket policy", "bucket", storage.BucketName, "error", err)
		}
	}

	publisher := events.Publisher(events.NoopPublisher{})
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn("event publishing disabled", "error", err)
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close()

	limits := middleware.RateLimitConfig{
		Window:    cfg.RecipeCreateWindow,
		Limit:     cfg.RecipeCreateLimit,
		KeyPrefix: "ratelimit:recipe_create",
	}
	var limiter middleware.Limiter = middleware.NewLocalLimiter(limits)
	if cfg.RedisConfigured() {
		client, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Warn("redis unavailable, using in-process rate limiting", "error", err)
		} else {
			defer client.Close()
			limiter = middleware.NewRedisLimiter(client, limits)
		}
	}

	engine, err := router.SetupRouter(db, router.Options{
		JWTSecret:                cfg.JWTSecret,
		TokenTTL:                 cfg.JWTTTL,
		PageSize:                 cfg.PageSize,
		MaxPageSize:              cfg.MaxPageSize,
		SubscriptionRecipesLimit: cfg.SubscriptionRecipesLimit,
		ShoppingListMaxRows:      cfg.ShoppingListMaxRows,
		MaxImageBytes:            cfg.MaxImageBytes,
		CORSAllowedOrigins:       cfg.CORSAllowedOrigins,
		Images:                   storage,
		Publisher:                publisher,
		CreateLimits:             limiter,
	}, log)
	if err != nil {
		return err
	}

	log.Info("starting foodgram api", "environment", cfg.Environment, "addr", cfg.Addr())
	return server.New(cfg.Addr(), engine, cfg.ShutdownTimeout, log).Run(ctx)
}
