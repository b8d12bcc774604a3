package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

type Schedule int

const (
	Hourly Schedule = iota
	Daily           // 02:00 UTC
)

// Job is a unit of background maintenance run by the Scheduler.
type Job interface {
	Name() string
	Schedule() Schedule
	Execute(ctx context.Context) error
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	log       *zap.Logger
	started   bool
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewScheduler(log *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Scheduler) run(job Job) {
	start := time.Now()
	if err := job.Execute(s.ctx); err != nil {
		s.log.Error("job failed", zap.String("job", job.Name()), zap.Error(err))
		return
	}
	s.log.Info("job completed", zap.String("job", job.Name()), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch job.Schedule() {
	case Hourly:
		_, err = s.scheduler.Every(1).Hour().Do(s.run, job)
	case Daily:
		_, err = s.scheduler.Every(1).Day().At("02:00").Do(s.run, job)
	default:
		err = fmt.Errorf("unknown schedule %d", job.Schedule())
	}
	if err != nil {
		return fmt.Errorf("register job %s: %w", job.Name(), err)
	}

	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || len(s.jobs) == 0 {
		return
	}

	s.scheduler.StartAsync()
	s.started = true
	s.log.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels the context handed to running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.cancel()
	s.scheduler.Stop()
	s.started = false
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// RunNow executes the named job synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	var target Job
	for _, job := range s.jobs {
		if job.Name() == name {
			target = job
			break
		}
	}
	s.mu.Unlock()

	if target == nil {
		return fmt.Errorf("job not found: %s", name)
	}
	return target.Execute(ctx)
}
