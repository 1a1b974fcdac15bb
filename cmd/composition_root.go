package cmd

import (
	"fmt"
	"log/slog"
	"time"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/kafka"
	"dispatch/internal/adapters/out/paystack"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/uploads"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters, domain services, and use case handlers
// together. Everything that can fail is constructed once here, so a
// misconfigured deployment dies at startup rather than on the first
// request.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory ports.UnitOfWorkFactory

	notifier   *kafka.Notifier
	gateway    *paystack.Gateway
	imageStore *uploads.GoodsImageStore
	jobManager *jobs.JobManager

	pricing services.PricingCalculator
	logger  *slog.Logger
}

// NewCompositionRoot builds the full object graph from the configuration.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	tariff := services.Tariff{
		RatePerKm:        cfg.TariffRatePerKm,
		RatePerKg:        cfg.TariffRatePerKg,
		DemandMultiplier: cfg.TariffDemandMultiplier,
	}
	pricing, err := services.NewPricingCalculator(tariff)
	if err != nil {
		return nil, fmt.Errorf("create pricing calculator: %w", err)
	}

	notifier, err := kafka.NewNotifier(kafka.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaNotificationsTopic,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create kafka notifier: %w", err)
	}

	gateway, err := paystack.NewGateway(paystack.Config{
		BaseURL:   cfg.PaystackBaseURL,
		SecretKey: cfg.PaystackSecretKey,
		Timeout:   time.Duration(cfg.PaystackTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create paystack gateway: %w", err)
	}

	imageStore, err := uploads.NewGoodsImageStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("create goods image store: %w", err)
	}

	root := &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		notifier:   notifier,
		gateway:    gateway,
		imageStore: imageStore,
		pricing:    pricing,
		logger:     logger,
	}

	autoAssign, err := root.createAutoAssignOrderCommandHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("create auto assign handler: %w", err)
	}

	root.jobManager, err = jobs.NewJobManager(
		autoAssign,
		root.createFailOrderCommandHandler(),
		root.orderUoWFactory(),
		jobs.RetryConfig{
			Interval:    time.Duration(cfg.RetryIntervalMinutes) * time.Minute,
			MaxAttempts: cfg.RetryMaxAttempts,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("create job manager: %w", err)
	}

	return root, nil
}

// JobManager returns the background job coordinator.
func (c *CompositionRoot) JobManager() *jobs.JobManager {
	return c.jobManager
}

// Notifier returns the kafka notification publisher for shutdown.
func (c *CompositionRoot) Notifier() *kafka.Notifier {
	return c.notifier
}

// CreateHTTPServer builds the REST server with all handlers wired in.
func (c *CompositionRoot) CreateHTTPServer(cfg Config) (*httpin.Server, error) {
	autoAssign, err := c.createAutoAssignOrderCommandHandler(cfg)
	if err != nil {
		return nil, err
	}

	return httpin.NewServer(
		c.createCreateOrderCommandHandler(),
		c.createInitializePaymentCommandHandler(),
		c.createConfirmPaymentCommandHandler(autoAssign),
		c.createAssignDriverCommandHandler(),
		autoAssign,
		c.createTransitionOrderStatusCommandHandler(),
		c.createReportDriverLocationCommandHandler(),
		queries.NewGetOrderQueryHandler(c.gormDB),
		queries.NewGetActiveOrdersQueryHandler(c.gormDB),
		c.imageStore,
	), nil
}

func (c *CompositionRoot) createCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(
		c.orderUoWFactory(), c.pricing, c.notifier, c.logger)
}

func (c *CompositionRoot) createInitializePaymentCommandHandler() commands.InitializePaymentCommandHandler {
	return commands.NewInitializePaymentCommandHandler(c.orderUoWFactory(), c.gateway)
}

func (c *CompositionRoot) createConfirmPaymentCommandHandler(
	autoAssign commands.AutoAssignOrderCommandHandler,
) commands.ConfirmPaymentCommandHandler {
	return commands.NewConfirmPaymentCommandHandler(
		c.orderUoWFactory(),
		c.gateway,
		autoAssign,
		c.jobManager.Scheduler(),
		c.notifier,
		c.logger,
	)
}

func (c *CompositionRoot) createAutoAssignOrderCommandHandler(
	cfg Config,
) (commands.AutoAssignOrderCommandHandler, error) {
	return commands.NewAutoAssignOrderCommandHandler(
		c.crossUoWFactory(),
		commands.MatchingConfig{
			LocationFreshness: time.Duration(cfg.LocationFreshnessMinutes) * time.Minute,
		},
		c.notifier,
		c.logger,
	)
}

func (c *CompositionRoot) createAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	return commands.NewAssignDriverCommandHandler(
		c.crossUoWFactory(), c.jobManager.Scheduler(), c.notifier, c.logger)
}

func (c *CompositionRoot) createTransitionOrderStatusCommandHandler() commands.TransitionOrderStatusCommandHandler {
	return commands.NewTransitionOrderStatusCommandHandler(
		c.orderUoWFactory(), c.jobManager.Scheduler())
}

func (c *CompositionRoot) createReportDriverLocationCommandHandler() commands.ReportDriverLocationCommandHandler {
	return commands.NewReportDriverLocationCommandHandler(c.driverUoWFactory())
}

func (c *CompositionRoot) createFailOrderCommandHandler() commands.FailOrderCommandHandler {
	return commands.NewFailOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) driverUoWFactory() commands.DriverUoWFactory {
	return FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) crossUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
