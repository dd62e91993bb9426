package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/queue"
	"github.com/pratik-mahalle/petalert/internal/repository/postgres"
	"github.com/pratik-mahalle/petalert/internal/worker"
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
		Service:    "petalert-worker",
	})

	if cfg.Queue.Driver == "memory" {
		// The memory broker only lives inside one process
		log.Fatal("QUEUE_DRIVER=memory cannot be used by a standalone worker, set WORKER_IN_PROCESS=true on the API instead")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		log.FatalWithErr(err, "Failed to connect to database")
	}
	defer db.Close()

	broker, err := queue.NewBroker(cfg.Queue, log)
	if err != nil {
		log.FatalWithErr(err, "Failed to connect to queue")
	}
	defer broker.Close()

	senders, err := worker.NewSenders(ctx, cfg, log)
	if err != nil {
		log.FatalWithErr(err, "Failed to configure senders")
	}

	runner, err := worker.NewRunner(cfg.Queue, cfg.Worker.DeadLetterSchedule, broker, senders, postgres.NewDeadLetterRepository(db), log)
	if err != nil {
		log.FatalWithErr(err, "Failed to create workers")
	}

	if err := runner.Run(ctx); err != nil {
		log.ErrorWithErr(err, "Workers stopped with error")
		os.Exit(1)
	}
}
