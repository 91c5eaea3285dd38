// Package schedule runs README generation on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Job is one scheduled unit of work
type Job func(ctx context.Context) error

// Parse validates a five field cron expression or a descriptor such as
// "@daily" or "@every 6h"
func Parse(expr string) (cron.Schedule, error) {
	if expr == "" {
		return nil, fmt.Errorf("schedule expression cannot be empty")
	}
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return sched, nil
}

// Next returns the first activation of expr after now
func Next(expr string, now time.Time) (time.Time, error) {
	sched, err := Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now), nil
}

// State describes the runs so far
type State struct {
	Runs              int
	LastRunAt         time.Time
	LastDuration      time.Duration
	LastStatus        string
	LastError         string
	ConsecutiveErrors int
	NextRunAt         time.Time
}

// Scheduler runs a Job on a schedule, skipping activations while the
// previous run is still in progress
type Scheduler struct {
	expr      string
	job       Job
	immediate bool
	logger    zerolog.Logger

	mu    sync.Mutex
	state State
	cron  *cron.Cron
	entry cron.EntryID
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithImmediateRun runs the job once as soon as Run starts
func WithImmediateRun() Option {
	return func(s *Scheduler) {
		s.immediate = true
	}
}

// New creates a scheduler for expr
func New(expr string, job Job, logger zerolog.Logger, opts ...Option) (*Scheduler, error) {
	if job == nil {
		return nil, fmt.Errorf("scheduler requires a job")
	}
	if _, err := Parse(expr); err != nil {
		return nil, err
	}

	s := &Scheduler{
		expr:   expr,
		job:    job,
		logger: logger.With().Str("component", "scheduler").Str("schedule", expr).Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run blocks until ctx is done. Jobs receive ctx, so cancelling it also
// cancels a run in progress.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})),
	)

	entry, err := c.AddFunc(s.expr, func() { s.execute(ctx) })
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	s.mu.Lock()
	s.cron = c
	s.entry = entry
	s.mu.Unlock()

	if s.immediate {
		s.execute(ctx)
	}

	c.Start()
	s.refreshNext()
	s.logger.Info().Time("next_run", s.State().NextRunAt).Msg("Scheduler started")

	<-ctx.Done()

	stopped := c.Stop()
	<-stopped.Done()
	s.logger.Info().Int("runs", s.State().Runs).Msg("Scheduler stopped")
	return nil
}

// State returns a snapshot of the scheduler state
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) execute(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.logger.Info().Msg("Executing scheduled run")
	err := s.job(ctx)
	duration := time.Since(start)

	s.mu.Lock()
	s.state.Runs++
	s.state.LastRunAt = start
	s.state.LastDuration = duration
	if err != nil {
		s.state.LastStatus = "error"
		s.state.LastError = err.Error()
		s.state.ConsecutiveErrors++
	} else {
		s.state.LastStatus = "ok"
		s.state.LastError = ""
		s.state.ConsecutiveErrors = 0
	}
	consecutive := s.state.ConsecutiveErrors
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().
			Err(err).
			Int("consecutive_errors", consecutive).
			Msg("Scheduled run failed")
	} else {
		s.logger.Info().
			Dur("duration", duration).
			Msg("Scheduled run completed")
	}
	s.refreshNext()
}

func (s *Scheduler) refreshNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	s.state.NextRunAt = s.cron.Entry(s.entry).Next
}

// cronLogger adapts zerolog to the cron.Logger interface
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
