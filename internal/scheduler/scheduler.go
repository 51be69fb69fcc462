// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance tasks.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/oblog-go/internal/service"
)

// Scheduler wraps a cron runner with the application's maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler with the standard jobs registered. Old event log
// rows are pruned daily according to the retention period.
func New(events *service.EventService, eventRetention time.Duration) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		removed, err := events.Prune(ctx, eventRetention)
		if err != nil {
			slog.Error("event log prune failed", "error", err)
			return
		}
		if removed > 0 {
			slog.Info("pruned event log", "removed", removed)
		}
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c}, nil
}

// Start begins running scheduled jobs in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to complete.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
