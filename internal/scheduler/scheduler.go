// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler runs the background promotion of scheduled articles.
// A single Scheduler is constructed at process start with the article
// store injected, and stopped during graceful shutdown.
package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"
)

// DefaultInterval is how often due articles are checked for promotion.
const DefaultInterval = 60 * time.Second

// Promoter is the storage operation the scheduler drives: a single
// conditional bulk update that publishes every due scheduled article
// and reports how many rows it touched.
type Promoter interface {
	PromoteDue(ctx context.Context) (int, error)
}

// Scheduler periodically promotes due scheduled articles. Ticks are
// strictly sequential; a tick that fails or panics is logged and never
// stops the ticker.
type Scheduler struct {
	promoter Promoter
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a scheduler with the given promoter. A zero interval
// falls back to DefaultInterval.
func New(promoter Promoter, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		promoter: promoter,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background loop. It returns immediately; call Stop
// to terminate the loop and wait for the in-flight tick to finish.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
	slog.Info("promotion scheduler started", "interval", s.interval.String())
}

// Stop terminates the loop and blocks until the current tick completes.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
	slog.Info("promotion scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		}
	}
}

// tick runs one promotion attempt. Errors and panics are contained here
// so the next tick always fires.
func (s *Scheduler) tick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("promotion tick panicked",
				"error", rec,
				"stack", string(debug.Stack()),
			)
		}
	}()

	n, err := s.promoter.PromoteDue(ctx)
	if err != nil {
		slog.Error("promotion tick failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("scheduled articles promoted", "count", n)
	}
}
