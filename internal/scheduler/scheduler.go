package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrDropJob signals that a tick failed permanently (e.g. the monitor was
// deleted under the job) and the recurring job should be removed instead of
// retried on the next interval.
var ErrDropJob = errors.New("scheduler: drop job")

// Handler runs one probe tick for a monitor. The job payload carries only
// the monitor id; the handler re-reads monitor state at execution time.
type Handler func(ctx context.Context, monitorID uint) error

// JobScheduler maintains one recurring job per live monitor, keyed by
// monitor id.
type JobScheduler interface {
	Schedule(monitorID uint, interval time.Duration) error
	Reschedule(monitorID uint, interval time.Duration) error
	Unschedule(monitorID uint) error
	ListScheduled() map[uint]time.Duration
	Start()
	Shutdown() error
}

// FailedRun is one retained failed tick, kept for inspection.
type FailedRun struct {
	MonitorID uint
	At        time.Time
	Err       string
}

const maxRetainedFailures = 64

// Scheduler is the gocron-backed JobScheduler. It keeps a keyed index from
// monitor id to job handle so reschedule and unschedule never scan the full
// job list.
type Scheduler struct {
	scheduler gocron.Scheduler
	handler   Handler
	logger    zerolog.Logger

	mu       sync.Mutex
	jobs     map[uint]jobEntry
	failures []FailedRun
}

type jobEntry struct {
	id       uuid.UUID
	interval time.Duration
}

// New builds a Scheduler with at most workerLimit ticks executing at once.
// Each monitor's job runs in singleton mode, so a tick that outlives its
// interval is not stacked behind itself.
func New(handler Handler, workerLimit int, logger zerolog.Logger) (*Scheduler, error) {
	if workerLimit <= 0 {
		workerLimit = 10
	}

	gs, err := gocron.NewScheduler(
		gocron.WithLimitConcurrentJobs(uint(workerLimit), gocron.LimitModeWait),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: gs,
		handler:   handler,
		logger:    logger.With().Str("component", "scheduler").Logger(),
		jobs:      make(map[uint]jobEntry),
	}, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.logger.Info().Msg("scheduler started")
}

func (s *Scheduler) Shutdown() error {
	s.logger.Info().Msg("scheduler stopping")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) Schedule(monitorID uint, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleLocked(monitorID, interval)
}

// Reschedule replaces the monitor's recurring job when the interval changed.
// An unchanged interval is a no-op; a missing old job is treated as nothing
// to remove and the new job is registered anyway.
func (s *Scheduler) Reschedule(monitorID uint, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[monitorID]; ok && existing.interval == interval {
		return nil
	}
	return s.scheduleLocked(monitorID, interval)
}

// Unschedule removes the monitor's recurring job. Removing a monitor that
// has no job is not an error.
func (s *Scheduler) Unschedule(monitorID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.jobs[monitorID]
	if !ok {
		return nil
	}
	if err := s.scheduler.RemoveJob(entry.id); err != nil {
		s.logger.Debug().Uint("monitor_id", monitorID).Err(err).Msg("stale job handle on unschedule")
	}
	delete(s.jobs, monitorID)
	s.logger.Info().Uint("monitor_id", monitorID).Msg("monitor unscheduled")
	return nil
}

func (s *Scheduler) ListScheduled() map[uint]time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[uint]time.Duration, len(s.jobs))
	for id, entry := range s.jobs {
		out[id] = entry.interval
	}
	return out
}

// RecentFailures returns the retained failed runs, oldest first.
func (s *Scheduler) RecentFailures() []FailedRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]FailedRun, len(s.failures))
	copy(out, s.failures)
	return out
}

func (s *Scheduler) scheduleLocked(monitorID uint, interval time.Duration) error {
	if existing, ok := s.jobs[monitorID]; ok {
		if err := s.scheduler.RemoveJob(existing.id); err != nil {
			s.logger.Debug().Uint("monitor_id", monitorID).Err(err).Msg("stale job handle on reschedule")
		}
		delete(s.jobs, monitorID)
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.runTick, monitorID),
		gocron.WithName(fmt.Sprintf("monitor-%d", monitorID)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule monitor %d: %w", monitorID, err)
	}

	s.jobs[monitorID] = jobEntry{id: job.ID(), interval: interval}
	s.logger.Info().Uint("monitor_id", monitorID).Dur("interval", interval).Msg("monitor scheduled")
	return nil
}

func (s *Scheduler) runTick(monitorID uint) {
	err := s.handler(context.Background(), monitorID)
	if err == nil {
		return
	}

	if errors.Is(err, ErrDropJob) {
		s.logger.Warn().Uint("monitor_id", monitorID).Err(err).Msg("dropping recurring job")
		if uerr := s.Unschedule(monitorID); uerr != nil {
			s.logger.Error().Uint("monitor_id", monitorID).Err(uerr).Msg("failed to drop job")
		}
		return
	}

	s.recordFailure(monitorID, err)
	s.logger.Error().Uint("monitor_id", monitorID).Err(err).Msg("tick failed")
}

func (s *Scheduler) recordFailure(monitorID uint, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.failures) >= maxRetainedFailures {
		s.failures = s.failures[1:]
	}
	s.failures = append(s.failures, FailedRun{
		MonitorID: monitorID,
		At:        time.Now(),
		Err:       err.Error(),
	})
}
