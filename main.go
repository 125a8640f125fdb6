package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"expensebuddy/internal/auth"
	"expensebuddy/internal/config"
	"expensebuddy/internal/database"
	"expensebuddy/internal/handlers"
	"expensebuddy/internal/middleware"
	"expensebuddy/internal/repositories"
	"expensebuddy/internal/services"
	"expensebuddy/pkg/rabbitmq"
)

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)
	if cfg.GeneratedSecret {
		log.Warn("JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}

	app, err := newApp(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("addr", cfg.AppAddr).Info("Starting server")
		if err := app.fiber.Listen(cfg.AppAddr); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Info("Shutting down server...")
	if err := app.fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("Error during Fiber shutdown")
	}
	log.Info("Server gracefully stopped")
}

// application bundles the HTTP app with the resources it must release on exit.
type application struct {
	fiber   *fiber.App
	closers []func() error
	log     logrus.FieldLogger
}

// Close releases the broker connection and the database, in reverse order of acquisition.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Error("Error releasing resource")
		}
	}
}

// newApp wires storage, services and handlers according to cfg.
func newApp(cfg config.Config, log *logrus.Logger) (*application, error) {
	app := &application{log: log}

	userRepo, txRepo, err := openRepositories(cfg, log, app)
	if err != nil {
		return nil, err
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange}, log)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, mqClient.Close)
		publisher = mqClient
	}

	authService := services.NewAuthService(userRepo, cfg.BcryptCost, log)
	txService := services.NewTransactionService(txRepo, publisher, log)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	authHandler := handlers.NewAuthHandler(authService, tokens, log)
	txHandler := handlers.NewTransactionHandler(txService, log)

	f := fiber.New(fiber.Config{
		AppName:               "expensebuddy",
		DisableStartupMessage: true,
	})
	f.Use(recover.New())
	f.Use(logger.New(logger.Config{Output: log.Writer()}))

	f.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": cfg.DBDriver,
			"events":   publisher != nil,
		})
	})

	apiV1 := f.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	txHandler.RegisterPublicRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(tokens, authService, log))
	txHandler.RegisterRoutes(protected)

	app.fiber = f
	return app, nil
}

func openRepositories(cfg config.Config, log *logrus.Logger, app *application) (repositories.UserRepository, repositories.TransactionRepository, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Warn("Using in-memory storage; data is lost on exit")
		return repositories.NewMemoryUserRepository(), repositories.NewMemoryTransactionRepository(), nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		return nil, nil, err
	}
	app.closers = append(app.closers, func() error { return database.Close(db) })
	return repositories.NewGORMUserRepository(db), repositories.NewGORMTransactionRepository(db), nil
}
