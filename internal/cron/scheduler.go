package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs registered jobs on their cron expressions. A tick that
// arrives while the previous run of the same job is still in flight is
// skipped, not queued: a slow sync pass must never stack a second pass
// behind it.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []Job
	locks  map[string]*sync.Mutex
	logger *slog.Logger
	cancel context.CancelFunc
}

// NewScheduler creates an empty scheduler. Register jobs, then Start.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		locks:  make(map[string]*sync.Mutex),
		logger: logger,
	}
}

// newParser builds the five-field (minute to day-of-week) expression
// parser. No seconds field and no descriptors, matching what the
// sync_schedule config option documents.
func newParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}

// RegisterJob adds a job under its name. Names are unique; the name is
// also the overlap-suppression key.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.locks[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}

	s.locks[name] = &sync.Mutex{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Start validates every schedule expression and begins ticking. An
// invalid expression fails the whole Start so a misconfigured
// sync_schedule is caught at daemon startup, not at the first tick.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.cron = cron.New(cron.WithParser(newParser()))

	for _, j := range s.jobs {
		if _, err := s.cron.AddFunc(j.Schedule(), s.tick(ctx, j)); err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", j.Name(), err)
		}
	}

	s.cron.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.jobs))
	return nil
}

// tick wraps one job run for the cron library. TryLock is the overlap
// guard: atomic, so there is no window between checking and acquiring.
func (s *Scheduler) tick(ctx context.Context, j Job) func() {
	lock := s.locks[j.Name()]
	return func() {
		if !lock.TryLock() {
			s.logger.Warn("cron: previous run still in flight, skipping tick",
				"job", j.Name(),
			)
			return
		}
		defer lock.Unlock()

		s.logger.Debug("cron: job started", "job", j.Name())
		if err := j.Run(ctx); err != nil {
			s.logger.Error("cron: job failed", "job", j.Name(), "error", err)
			return
		}
		s.logger.Debug("cron: job completed", "job", j.Name())
	}
}

// Stop cancels the job context and waits for in-flight runs to finish.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.logger.Info("cron: scheduler stopped")
	}
	return nil
}
