package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dispatch/cmd"
	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	gormDB, err := openDatabase(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	root, err := cmd.NewCompositionRoot(cfg, gormDB, logger)
	if err != nil {
		logger.Error("composition root failed", "error", err)
		os.Exit(1)
	}

	if err = root.JobManager().StartAll(); err != nil {
		logger.Error("background jobs failed to start", "error", err)
		os.Exit(1)
	}
	defer root.JobManager().StopAll()
	defer func() {
		if closeErr := root.Notifier().Close(); closeErr != nil {
			logger.Error("kafka notifier close failed", "error", closeErr)
		}
	}()

	server, err := root.CreateHTTPServer(cfg)
	if err != nil {
		logger.Error("http server wiring failed", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	server.RegisterRoutes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)); startErr != nil &&
			startErr != http.ErrServerClosed {
			logger.Error("http server stopped", "error", startErr)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
}

func openDatabase(cfg cmd.Config) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgresdriver.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.StatusChangeDTO{},
		&driverrepo.DriverDTO{},
		&driverrepo.LocationDTO{},
	)
	if err != nil {
		return nil, err
	}

	return gormDB, nil
}

func loadConfig() (cmd.Config, error) {
	// a missing .env file is fine in containerized deployments
	_ = godotenv.Load(".env")

	cfg := cmd.Config{
		HTTPPort:                envOr("HTTP_PORT", "8080"),
		DBHost:                  envOr("DB_HOST", "localhost"),
		DBPort:                  envOr("DB_PORT", "5432"),
		DBUser:                  os.Getenv("DB_USER"),
		DBPassword:              os.Getenv("DB_PASSWORD"),
		DBName:                  os.Getenv("DB_NAME"),
		DBSslMode:               envOr("DB_SSLMODE", "disable"),
		KafkaBrokers:            splitList(envOr("KAFKA_BROKERS", "localhost:9092")),
		KafkaNotificationsTopic: envOr("KAFKA_NOTIFICATIONS_TOPIC", "notifications"),
		PaystackBaseURL:         envOr("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaystackSecretKey:       os.Getenv("PAYSTACK_SECRET_KEY"),
		UploadDir:               envOr("UPLOAD_DIR", "uploads"),
	}

	var err error
	if cfg.PaystackTimeoutSeconds, err = envOrInt("PAYSTACK_TIMEOUT_SECONDS", 10); err != nil {
		return cmd.Config{}, err
	}
	if cfg.TariffRatePerKm, err = envOrFloat("TARIFF_RATE_PER_KM", 100); err != nil {
		return cmd.Config{}, err
	}
	if cfg.TariffRatePerKg, err = envOrFloat("TARIFF_RATE_PER_KG", 50); err != nil {
		return cmd.Config{}, err
	}
	if cfg.TariffDemandMultiplier, err = envOrFloat("TARIFF_DEMAND_MULTIPLIER", 1.0); err != nil {
		return cmd.Config{}, err
	}
	if cfg.LocationFreshnessMinutes, err = envOrInt("LOCATION_FRESHNESS_MINUTES", 15); err != nil {
		return cmd.Config{}, err
	}
	if cfg.RetryIntervalMinutes, err = envOrInt("RETRY_INTERVAL_MINUTES", 5); err != nil {
		return cmd.Config{}, err
	}
	if cfg.RetryMaxAttempts, err = envOrInt("RETRY_MAX_ATTEMPTS", 12); err != nil {
		return cmd.Config{}, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func envOrFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
