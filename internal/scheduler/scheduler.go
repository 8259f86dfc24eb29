// Package scheduler fires the extraction and report jobs on cron schedules
// anchored to the configured timezone
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/adc-dairy/milkroom/internal/logger"
)

// Scheduler wraps a timezone-anchored cron runner
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler whose expressions evaluate in the given location
func New(location *time.Location) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(location)),
	}
}

// Add registers a job under a standard 5-field cron expression. An invalid
// expression is a startup error, not a silently dead trigger.
func (s *Scheduler) Add(name, expression string, job func()) error {
	_, err := s.cron.AddFunc(expression, func() {
		logger.Info("scheduled trigger fired", zap.String("job", name))
		job()
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for %s: %w", expression, name, err)
	}

	logger.Info("job scheduled",
		zap.String("job", name),
		zap.String("expression", expression),
	)
	return nil
}

// Start begins firing triggers in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts new triggers and returns a context that completes when running
// jobs have finished
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
