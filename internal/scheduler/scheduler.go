package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// JobType represents the periodic maintenance jobs
type JobType int

const (
	JobTypeBacklog JobType = iota
	JobTypeStatsRefresh
)

// String returns the string representation of a JobType
func (j JobType) String() string {
	switch j {
	case JobTypeBacklog:
		return "pending-backlog"
	case JobTypeStatsRefresh:
		return "stats-refresh"
	default:
		return "unknown"
	}
}

// BacklogStore counts listings that have waited too long for approval.
type BacklogStore interface {
	CountPendingSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type BacklogGauge interface {
	SetPendingBacklog(n int64)
}

type StatsRefresher interface {
	Refresh(ctx context.Context) error
}

type Options struct {
	Interval time.Duration
	// StaleAfter is the age at which a pending listing counts as backlog.
	StaleAfter time.Duration
}

// Scheduler runs the maintenance jobs on a fixed interval
type Scheduler struct {
	scheduler gocron.Scheduler
	store     BacklogStore
	gauge     BacklogGauge
	stats     StatsRefresher
	opts      Options
	logger    *logrus.Logger
	now       func() time.Time

	mu   sync.Mutex
	jobs map[JobType]gocron.Job
}

// NewScheduler creates a new scheduler. stats may be nil when no refresh
// job is wanted.
func NewScheduler(store BacklogStore, gauge BacklogGauge, stats StatsRefresher, opts Options, logger *logrus.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		store:     store,
		gauge:     gauge,
		stats:     stats,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		jobs:      make(map[JobType]gocron.Job),
	}, nil
}

// Start registers the jobs and begins running them, each once immediately
// and then every interval.
func (s *Scheduler) Start() error {
	if err := s.register(JobTypeBacklog, s.updateBacklog); err != nil {
		return err
	}
	if s.stats != nil {
		if err := s.register(JobTypeStatsRefresh, s.refreshStats); err != nil {
			return err
		}
	}

	s.scheduler.Start()
	s.logger.WithField("interval", s.opts.Interval.String()).Info("Scheduler started")
	return nil
}

func (s *Scheduler) register(jobType JobType, fn func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(s.opts.Interval),
		gocron.NewTask(s.run, jobType, fn),
		gocron.WithName(jobType.String()),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register %s job: %w", jobType, err)
	}
	s.jobs[jobType] = job
	return nil
}

// run executes one job, bounded by the interval so a hung query cannot
// stack up behind itself.
func (s *Scheduler) run(jobType JobType, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Interval)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.WithError(err).WithField("job_type", jobType.String()).Error("Scheduled job failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"job_type": jobType.String(),
		"duration": time.Since(start).String(),
	}).Debug("Scheduled job completed")
}

func (s *Scheduler) updateBacklog(ctx context.Context) error {
	cutoff := s.now().Add(-s.opts.StaleAfter)
	n, err := s.store.CountPendingSince(ctx, cutoff)
	if err != nil {
		return err
	}
	if s.gauge != nil {
		s.gauge.SetPendingBacklog(n)
	}
	if n > 0 {
		s.logger.WithFields(logrus.Fields{
			"pending": n,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Warn("Listings waiting for approval")
	}
	return nil
}

func (s *Scheduler) refreshStats(ctx context.Context) error {
	return s.stats.Refresh(ctx)
}

// Jobs lists the registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for _, jobType := range []JobType{JobTypeBacklog, JobTypeStatsRefresh} {
		if job, ok := s.jobs[jobType]; ok {
			names = append(names, job.Name())
		}
	}
	return names
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
