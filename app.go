package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microstore/internal/config"
	"microstore/internal/handlers"
	"microstore/internal/middleware"
	"microstore/internal/repositories"
	"microstore/internal/services"
	"microstore/internal/slug"
	"microstore/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber   *fiber.App
	Service *services.StoreService
	MQ      *rabbitmq.Client // nil when events are disabled

	closers []func() error
}

// NewApp wires configuration, storage, services and routes together.
func NewApp(cfg config.Config, log *logrus.Logger) (*App, error) {
	a := &App{}

	repo, closeRepo, err := openStoreRepository(cfg, log, true)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeRepo)

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Logger: log})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.MQ = mq
		a.closers = append(a.closers, mq.Close)
		publisher = mq
	}

	a.Service = newStoreService(cfg, log, repo, publisher)

	app := fiber.New(fiber.Config{
		AppName:      "MicroStore",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    64 * 1024,
		Immutable:    true,
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if log.IsLevelEnabled(logrus.DebugLevel) {
		app.Use(logger.New(logger.Config{Output: log.Out}))
	}
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  cfg.StoreDriver,
			"events": a.MQ != nil,
		})
	})

	handlers.NewStoreHandler(a.Service, log).RegisterRoutes(app)

	a.Fiber = app
	return a, nil
}

// Close releases the storage and broker connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func errorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(code).SendString(message)
	}
}

func newStoreService(cfg config.Config, log *logrus.Logger, repo repositories.StoreRepository, publisher services.EventPublisher) *services.StoreService {
	return services.NewStoreService(repo, slug.NewSource(), publisher, services.StoreServiceConfig{
		PublicOrigin:         cfg.PublicOrigin,
		RejectSlugCollisions: cfg.RejectSlugCollisions,
		Timeout:              cfg.DatastoreTimeout,
		Logger:               log,
	})
}

// openStoreRepository opens the backend selected by cfg.StoreDriver. The
// stores table is created or updated only when migrate is set.
func openStoreRepository(cfg config.Config, log *logrus.Logger, migrate bool) (repositories.StoreRepository, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store repository; stores are lost on restart")
		return repositories.NewMemoryStoreRepository(), func() error { return nil }, nil

	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := repositories.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("database", cfg.MongoDatabase).Info("connected to MongoDB")
		closeFn := func() error { return client.Disconnect(context.Background()) }
		return repositories.NewMongoStoreRepository(client.Database(cfg.MongoDatabase)), closeFn, nil

	case config.DriverSQLite, config.DriverPostgres:
		dialector := sqlite.Open(cfg.DatabaseDSN)
		if cfg.StoreDriver == config.DriverPostgres {
			dialector = postgres.Open(cfg.DatabaseDSN)
		}
		db, err := gorm.Open(dialector, &gorm.Config{
			Logger: gormlogger.New(log, gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			}),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		repo := repositories.NewGORMStoreRepository(db)
		if migrate {
			if err := repo.Migrate(); err != nil {
				sqlDB.Close()
				return nil, nil, err
			}
		}
		log.WithField("driver", cfg.StoreDriver).Info("database connection established")
		return repo, sqlDB.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
