package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/ticket_inventory/internal/adapter/handler"
	"github.com/srgjo27/ticket_inventory/internal/adapter/notifier"
	"github.com/srgjo27/ticket_inventory/internal/adapter/repository/memory"
	"github.com/srgjo27/ticket_inventory/internal/adapter/repository/postgres"
	"github.com/srgjo27/ticket_inventory/internal/clock"
	"github.com/srgjo27/ticket_inventory/internal/core/ports"
	"github.com/srgjo27/ticket_inventory/internal/core/services"
	"github.com/srgjo27/ticket_inventory/internal/platform/config"
	"github.com/srgjo27/ticket_inventory/internal/platform/database"
)

func loadEnv(filepath string) {
	file, err := os.Open(filepath)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			os.Setenv(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func main() {
	loadEnv(".env")

	cfg, err := config.Load(getenv("INVENTORY_CONFIG", "config.toml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)
	clk := clock.NewSystem()

	var capacityRepo ports.CapacityRepository
	var holdRepo ports.HoldRepository

	switch getenv("INVENTORY_STORE", "postgres") {
	case "memory":
		logger.Warn("using in-memory store; holds will not survive restarts")
		store := memory.NewStore(clk)
		capacityRepo, holdRepo = store, store
	default:
		dbConfig := database.Config{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getenv("DB_NAME", "ticket_inventory"),
			SSLMode:  os.Getenv("DB_SSLMODE"),
		}

		db, err := database.NewPostgresDB(dbConfig, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}

		capacityRepo = postgres.NewCapacityRepository(db)
		holdRepo = postgres.NewHoldRepository(db)
	}

	var bus ports.Notifier
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%s", redisHost, getenv("REDIS_PORT", "6379")),
			DB:   0,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		logger.Info("redis connected", "host", redisHost)
		bus = notifier.NewRedisNotifier(redisClient, logger)
	} else {
		bus = notifier.NewHub()
	}

	availability := services.NewAvailabilityService(capacityRepo, holdRepo, services.Thresholds{
		LowStock:      cfg.Availability.LowStockThreshold,
		CriticalStock: cfg.Availability.CriticalStockThreshold,
	})

	engine := services.NewAllocationService(capacityRepo, holdRepo, bus, availability, clk, logger, services.AllocationConfig{
		CheckoutTTL:         cfg.HoldTTL("checkout"),
		AdminBlockTTL:       cfg.HoldTTL("admin-block"),
		WaitlistOfferTTL:    cfg.HoldTTL("waitlist-offer"),
		MaxActivePerSession: cfg.Holds.MaxActivePerSession,
		SweepBatchSize:      cfg.Holds.SweepBatchSize,
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	sweeper := services.NewSweeper(engine, cfg.SweepInterval(), logger)
	go sweeper.Run(sweepCtx)

	inventoryHandler := handler.NewInventoryHandler(engine, bus)

	mux := http.NewServeMux()
	inventoryHandler.Register(mux)

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
		// No write timeout: SSE subscribers hold their response open.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}
