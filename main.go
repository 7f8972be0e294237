package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"city-game-system/archive"
	"city-game-system/config"
	"city-game-system/database"
	"city-game-system/events"
	"city-game-system/handlers"
	"city-game-system/logging"
	"city-game-system/middleware"
	"city-game-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	_, logCloser := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	err = run(cfg)
	if err != nil {
		slog.Error("server stopped", "error", err)
	}
	logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run wires the server and blocks until a shutdown signal or a listener
// failure. Deferred cleanup always runs before it returns.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormLevel := logger.Warn
	if strings.EqualFold(cfg.LogLevel, "debug") {
		gormLevel = logger.Info
	}
	db, err := database.Open(cfg.DatabaseURL, gormLevel)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	if cfg.SeedDemoData {
		if _, err := database.SeedDemo(ctx, db); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	publisher := events.NewNoop()
	if cfg.RedisURL != "" {
		publisher, err = events.NewRedis(cfg.RedisURL, cfg.EventsStream, cfg.EventsMaxLen)
		if err != nil {
			return fmt.Errorf("configure event stream: %w", err)
		}
		slog.Info("publishing events to redis stream", "stream", cfg.EventsStream)
	}
	defer publisher.Close()

	archiver := archive.NewNoop()
	if cfg.R2Enabled() {
		r2, err := archive.NewR2(ctx, archive.R2Config{
			AccountID:       cfg.CloudflareAccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			return fmt.Errorf("initialize R2 client: %w", err)
		}
		archiver = r2
	}

	clock := clockwork.NewRealClock()
	gameService := services.NewGameService(db, clock)
	playService := services.NewPlayService(db, clock, publisher, archiver)
	taskService := services.NewTaskService(db)

	sched, err := gameService.StartAvailabilityScheduler(cfg.AvailabilityAuditInterval)
	if err != nil {
		return fmt.Errorf("start availability audit: %w", err)
	}
	defer sched.Shutdown()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-User-Roles",
		MaxAge:       86400,
	}))

	handlers.SetupHealthRoutes(app)
	app.Use(middleware.GatewayAuthMiddleware(cfg.GameServiceToken))
	handlers.SetupGameRoutes(app, gameService, playService, taskService)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.Addr())
	}()
	slog.Info("server running", "addr", cfg.Addr(), "origins", cfg.AllowedOrigins)

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
