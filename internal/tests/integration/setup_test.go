package integration

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pratik-mahalle/petalert/internal/api/handlers"
	"github.com/pratik-mahalle/petalert/internal/api/router"
	"github.com/pratik-mahalle/petalert/internal/config"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/notifier"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/validator"
	"github.com/pratik-mahalle/petalert/internal/queue"
	"github.com/pratik-mahalle/petalert/internal/repository/postgres"
	"github.com/pratik-mahalle/petalert/internal/services"
	"github.com/pratik-mahalle/petalert/internal/testutil"
	"github.com/pratik-mahalle/petalert/internal/worker"
	"github.com/pratik-mahalle/petalert/pkg/client"
)

// recordingSender keeps every job it was asked to deliver
type recordingSender struct {
	mu   sync.Mutex
	jobs []*notification.Job
	err  error
}

func (s *recordingSender) Send(ctx context.Context, job *notification.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// stack is a running API server backed by SQLite and the in-memory broker
type stack struct {
	db    *sqlx.DB
	url   string
	email *recordingSender
	chat  *recordingSender
}

func newStack(t *testing.T) *stack {
	t.Helper()

	log := logger.New(logger.Config{Level: "error", Format: "json"})
	cfg := &config.Config{
		Server: config.ServerConfig{
			FrontendURL:    "http://localhost:5173",
			Environment:    "test",
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret-key-for-testing-only",
			AccessTokenExpiry: 15 * time.Minute,
			BCryptCost:        4,
		},
		Queue: config.QueueConfig{MaxRetries: 1, ConsumerConcurrency: 1},
	}

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.CleanupDB(db) })

	broker := queue.NewMemoryBroker(64, 0)
	t.Cleanup(func() { broker.Close() })

	alertRepo := postgres.NewAlertRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	petRepo := postgres.NewPetRepository(db)
	userRepo := postgres.NewUserRepository(db)
	deadLetterRepo := postgres.NewDeadLetterRepository(db)

	userService := services.NewUserService(userRepo, cfg.Auth.BCryptCost, log)
	subService := services.NewSubscriptionService(postgres.NewSubscriptionRepository(db), alertRepo, log)
	dispatcher := services.NewNotificationDispatcher(subService, userRepo, petRepo, broker, nil, log)
	alertService := services.NewAlertService(alertRepo, eventRepo, petRepo, subService, dispatcher, nil, log)

	val := validator.New()
	h := router.New(cfg, log, &router.Handlers{
		Health:       handlers.NewHealthHandler(db, broker, log),
		Auth:         handlers.NewAuthHandler(userService, cfg, log, val),
		Pet:          handlers.NewPetHandler(services.NewPetService(petRepo, log), log, val),
		Alert:        handlers.NewAlertHandler(alertService, log, val),
		Subscription: handlers.NewSubscriptionHandler(subService, alertService, log),
		DeadLetter:   handlers.NewDeadLetterHandler(services.NewDeadLetterService(deadLetterRepo), log),
	})

	s := &stack{
		db:    db,
		email: &recordingSender{},
		chat:  &recordingSender{},
	}

	runner, err := worker.NewRunner(cfg.Queue, "@every 1h", broker, map[notification.Channel]notifier.Sender{
		notification.ChannelEmail: s.email,
		notification.ChannelChat:  s.chat,
	}, deadLetterRepo, log)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s.url = srv.URL
	return s
}

// register creates an account and returns a client logged in as it
func (s *stack) register(t *testing.T, email string) (*client.Client, *client.User) {
	t.Helper()

	c := client.NewClient(client.Config{BaseURL: s.url})
	resp, err := c.Register(context.Background(), client.RegisterRequest{Email: email, Password: "correct-horse-battery"})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return c, resp.User
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
