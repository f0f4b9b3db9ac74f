package cron

import (
	"context"
	"errors"
	"time"

	"github.com/campuseats/campuseats-backend/pkg/logger"
)

const defaultInterval = time.Minute

// JobMetrics records per-job outcomes. *metrics.CronJobMetrics satisfies it.
type JobMetrics interface {
	ObserveDuration(job string, d time.Duration)
	IncSuccess(job string)
	IncFailure(job string)
}

type noopJobMetrics struct{}

func (noopJobMetrics) ObserveDuration(string, time.Duration) {}
func (noopJobMetrics) IncSuccess(string)                     {}
func (noopJobMetrics) IncFailure(string)                     {}

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  JobMetrics
	Interval time.Duration
}

// Service runs every registered job once per interval, on at most one
// worker at a time.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  JobMetrics
	interval time.Duration
	cycle    int64
}

func NewService(p ServiceParams) (*Service, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("cron service: logger required")
	case p.Lock == nil:
		return nil, errors.New("cron service: lock required")
	}
	s := &Service{
		logg:     p.Logger,
		registry: p.Registry,
		lock:     p.Lock,
		metrics:  p.Metrics,
		interval: p.Interval,
	}
	if s.registry == nil {
		s.registry = &Registry{}
	}
	if s.metrics == nil {
		s.metrics = noopJobMetrics{}
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	return s, nil
}

// Run starts a cycle right away and then on every tick. It returns the
// context error once ctx is done.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := s.RunOnce(ctx); err != nil {
			s.logg.Error(ctx, "cron.cycle_failed", err)
		}
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron.stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce runs each job once if this worker gets the lock. A failing job is
// logged and counted without stopping the others; only lock errors are
// returned.
func (s *Service) RunOnce(ctx context.Context) error {
	s.cycle++
	ctx = s.logg.WithField(ctx, "cycle", s.cycle)

	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !locked {
		s.logg.Info(ctx, "cron lock held elsewhere; skipping cycle")
		return nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "cron.lock_release_failed", err)
		}
	}()

	for _, job := range s.registry.Jobs() {
		s.runJob(ctx, job)
	}
	return nil
}

// runJob bounds a job by the interval so one slow job cannot hold the lock
// through the next cycle.
func (s *Service) runJob(ctx context.Context, job Job) {
	name := job.Name()
	ctx = s.logg.WithField(ctx, "job", name)
	jobCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	start := time.Now()
	err := job.Run(jobCtx)
	elapsed := time.Since(start)
	s.metrics.ObserveDuration(name, elapsed)

	ctx = s.logg.WithField(ctx, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		s.metrics.IncFailure(name)
		s.logg.Error(ctx, "cron job failed", err)
		return
	}
	s.metrics.IncSuccess(name)
	s.logg.Debug(ctx, "cron job completed")
}
