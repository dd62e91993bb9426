// @title PetAlert API
// @version 1.0
// @description Lost pet alerts with subscriptions and multi-channel notifications.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pratik-mahalle/petalert/internal/api/handlers"
	"github.com/pratik-mahalle/petalert/internal/api/router"
	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/validator"
	"github.com/pratik-mahalle/petalert/internal/queue"
	"github.com/pratik-mahalle/petalert/internal/repository/postgres"
	"github.com/pratik-mahalle/petalert/internal/services"
	"github.com/pratik-mahalle/petalert/internal/storage"
	"github.com/pratik-mahalle/petalert/internal/stream"
	"github.com/pratik-mahalle/petalert/internal/worker"
	"github.com/pratik-mahalle/petalert/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
		Service:    "petalert-api",
	})

	if err := run(cfg, log); err != nil {
		log.FatalWithErr(err, "API server failed")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	migrationsFS, err := migrations.GetFS(cfg.Database.Driver)
	if err != nil {
		return err
	}
	applied, err := postgres.RunMigrations(db, migrationsFS)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"driver":  cfg.Database.Driver,
		"applied": len(applied),
	}).Info("Database ready")

	broker, err := queue.NewBroker(cfg.Queue, log)
	if err != nil {
		return fmt.Errorf("failed to connect to queue: %w", err)
	}
	defer broker.Close()

	// Repositories
	alertRepo := postgres.NewAlertRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	petRepo := postgres.NewPetRepository(db)
	subRepo := postgres.NewSubscriptionRepository(db)
	userRepo := postgres.NewUserRepository(db)
	deadLetterRepo := postgres.NewDeadLetterRepository(db)

	var photos storage.PhotoLinker
	if cfg.Storage.Bucket != "" {
		store, err := storage.NewS3PhotoStore(ctx, cfg.Storage)
		if err != nil {
			log.WarnWithErr(err, "Pet photo links disabled")
		} else {
			photos = store
		}
	}

	sink := stream.NewEventSink(cfg.Stream)
	if c, ok := sink.(io.Closer); ok {
		defer c.Close()
	}

	// Services
	userService := services.NewUserService(userRepo, cfg.Auth.BCryptCost, log)
	petService := services.NewPetService(petRepo, log)
	subService := services.NewSubscriptionService(subRepo, alertRepo, log)
	dispatcher := services.NewNotificationDispatcher(subService, userRepo, petRepo, broker, photos, log)
	alertService := services.NewAlertService(alertRepo, eventRepo, petRepo, subService, dispatcher, sink, log)
	deadLetterService := services.NewDeadLetterService(deadLetterRepo)

	val := validator.New()
	handler := router.New(cfg, log, &router.Handlers{
		Health:       handlers.NewHealthHandler(db, broker, log),
		Auth:         handlers.NewAuthHandler(userService, cfg, log, val),
		Pet:          handlers.NewPetHandler(petService, log, val),
		Alert:        handlers.NewAlertHandler(alertService, log, val),
		Subscription: handlers.NewSubscriptionHandler(subService, alertService, log),
		DeadLetter:   handlers.NewDeadLetterHandler(deadLetterService, log),
	})

	workersDone := make(chan error, 1)
	if cfg.Worker.InProcess {
		senders, err := worker.NewSenders(ctx, cfg, log)
		if err != nil {
			return err
		}
		runner, err := worker.NewRunner(cfg.Queue, cfg.Worker.DeadLetterSchedule, broker, senders, deadLetterRepo, log)
		if err != nil {
			return err
		}
		go func() { workersDone <- runner.Run(ctx) }()
	} else {
		close(workersDone)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
			"in_process":  cfg.Worker.InProcess,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "Graceful shutdown failed")
	}

	stop()
	if err := <-workersDone; err != nil {
		log.ErrorWithErr(err, "Notification workers stopped with error")
	}

	log.Info("API server stopped")
	return nil
}
