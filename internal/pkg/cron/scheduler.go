package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one unit of work evaluated on the scheduler tick. A job decides
// for itself whether anything is due; returning an error never stops the
// loop.
type Job struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Scheduler drives all background work from a single repeating tick.
// Jobs run sequentially within a tick; an in-progress tick completes
// before Stop returns.
type Scheduler struct {
	interval time.Duration
	jobs     []Job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
}

func NewScheduler(interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// AddJob registers a job. Must be called before Start.
func (s *Scheduler) AddJob(name string, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{Name: name, Fn: fn})
	slog.Info("scheduler job registered", "name", name)
}

// Start begins the tick loop. The first tick runs immediately.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	slog.Info("scheduler started", "interval", s.interval, "job_count", len(s.jobs))
}

// Stop stops the loop after the current tick finishes.
func (s *Scheduler) Stop() {
	slog.Info("stopping scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	for _, job := range s.jobs {
		start := time.Now()
		if err := job.Fn(s.ctx); err != nil {
			slog.Error("scheduler job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		} else {
			slog.Debug("scheduler job completed", "name", job.Name, "duration", time.Since(start))
		}
	}
}

// RunOnce runs all jobs a single time (useful for testing).
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, job := range s.jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("scheduler job failed", "name", job.Name, "error", err)
		}
	}
}
