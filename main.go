package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agencysite/config"
	"agencysite/middleware"
	"agencysite/notifications"
	"agencysite/routes"
	"agencysite/services"
	"agencysite/utils"
	"agencysite/worker"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
)

func main() {
	logger := utils.NewLogger("MAIN")

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	cfg := config.AppConfig
	utils.ConfigureLogging(cfg.LogLevel, cfg.Environment)

	if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logger.WithError(err).Warn("Sentry disabled")
	}
	defer sentry.Flush(2 * time.Second)

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	auth := services.NewAuthService(config.DB, utils.NewLogger("AUTH"))
	if err := auth.EnsureSuperAdmin(context.Background(), cfg.SuperAdmin.Name, cfg.SuperAdmin.Email, cfg.SuperAdmin.Password); err != nil {
		logger.WithError(err).Fatal("Failed to seed super admin")
	}

	mailer := utils.NewMailer(utils.MailerConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		FromName: cfg.SMTP.FromName,
		Receiver: cfg.ReceiverEmail,
		SiteURL:  cfg.FrontendURL,
	})

	// Redis backs both the rate limiter and the notification checkpoints
	// when enabled; otherwise both stay in process memory.
	var rateLimitStorage fiber.Storage
	var checkpoints notifications.CheckpointStore = notifications.NewMemoryCheckpointStore(nil)
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancelPing()
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to redis")
		}
		defer client.Close()
		rateLimitStorage = middleware.NewRedisStorage(client)
		checkpoints = notifications.NewRedisCheckpointStore(client, nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broadcaster := worker.NewBroadcastWorker(utils.NewLogger("BROADCAST"))
	go broadcaster.Start(ctx)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "agencysite",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	})
	app.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.FrontendURL)))

	routes.SetupRoutes(app, routes.Dependencies{
		DB:                 config.DB,
		Notifier:           mailer,
		Center:             notifications.NewCenter(checkpoints, nil),
		Broadcaster:        broadcaster,
		RateLimitStorage:   rateLimitStorage,
		RateLimitInquiries: cfg.RateLimitInquiries,
		SecureCookies:      cfg.Environment == "production",
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}
