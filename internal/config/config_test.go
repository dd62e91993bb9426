package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %s, want sqlite", cfg.Database.Driver)
	}
	if cfg.Queue.MaxRetries != 3 {
		t.Errorf("Queue.MaxRetries = %d, want 3", cfg.Queue.MaxRetries)
	}
	if cfg.Queue.RetryDelay != 30*time.Second {
		t.Errorf("Queue.RetryDelay = %v, want 30s", cfg.Queue.RetryDelay)
	}
	if cfg.Stream.Enabled {
		t.Error("Stream.Enabled = true, want false")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("QUEUE_DRIVER", "memory")
	t.Setenv("QUEUE_MAX_RETRIES", "5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Queue.Driver != "memory" {
		t.Errorf("Queue.Driver = %s, want memory", cfg.Queue.Driver)
	}
	if cfg.Queue.MaxRetries != 5 {
		t.Errorf("Queue.MaxRetries = %d, want 5", cfg.Queue.MaxRetries)
	}
	if len(cfg.Stream.Brokers) != 2 || cfg.Stream.Brokers[1] != "k2:9092" {
		t.Errorf("Stream.Brokers = %v", cfg.Stream.Brokers)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite"},
			Auth:     AuthConfig{JWTSecret: "s"},
			Queue:    QueueConfig{Driver: "rabbitmq", MaxRetries: 3, ConsumerConcurrency: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing jwt secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "bad db driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "bad queue driver", mutate: func(c *Config) { c.Queue.Driver = "sqs" }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.Queue.MaxRetries = -1 }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Queue.ConsumerConcurrency = 0 }, wantErr: true},
		{name: "kafka without brokers", mutate: func(c *Config) { c.Stream.Enabled = true }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
