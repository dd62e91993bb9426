package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/pkg/logger"
	"github.com/pratik-mahalle/petalert/internal/pkg/metrics"
)

// DeadLetterMonitor periodically publishes the dead letter backlog
type DeadLetterMonitor struct {
	repo      notification.DeadLetterRepository
	schedule  string
	scheduler *cron.Cron
	logger    *logger.Logger
}

// NewDeadLetterMonitor validates schedule and creates a monitor
func NewDeadLetterMonitor(repo notification.DeadLetterRepository, schedule string, log *logger.Logger) (*DeadLetterMonitor, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid dead letter schedule: %w", err)
	}
	return &DeadLetterMonitor{
		repo:     repo,
		schedule: schedule,
		logger:   log,
	}, nil
}

// Run reports once, then on every tick until ctx is done
func (m *DeadLetterMonitor) Run(ctx context.Context) error {
	m.scheduler = cron.New()
	if _, err := m.scheduler.AddFunc(m.schedule, func() { m.Report(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule dead letter report: %w", err)
	}

	m.Report(ctx)
	m.scheduler.Start()
	m.logger.With("schedule", m.schedule).Info("Dead letter monitor started")

	<-ctx.Done()
	<-m.scheduler.Stop().Done()
	m.logger.Info("Dead letter monitor stopped")
	return nil
}

// Report updates the backlog gauge and warns about non-empty channels
func (m *DeadLetterMonitor) Report(ctx context.Context) map[notification.Channel]int64 {
	counts, err := m.repo.CountByChannel(ctx)
	if err != nil {
		m.logger.ErrorWithErr(err, "Failed to count dead letters")
		return nil
	}

	for channel, count := range counts {
		metrics.SetDeadLetterBacklog(string(channel), float64(count))
		if count > 0 {
			m.logger.WithFields(map[string]interface{}{
				"channel": string(channel),
				"count":   count,
			}).Warn("Dead letters waiting for review")
		}
	}
	return counts
}
