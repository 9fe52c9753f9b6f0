// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  *zap.SugaredLogger
}

// New creates a new scheduler. Overlapping runs of the same job are skipped.
func New(log *zap.SugaredLogger) *Scheduler {
	log = log.With("component", "scheduler")
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log}))),
		log:  log,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// AddJob registers job under a standard five-field cron expression or a descriptor
// such as "@every 15m" or "@hourly".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() { s.run(job) })
	if err != nil {
		return err
	}

	s.log.Infow("job registered", "schedule", schedule, "job", job.Name())
	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Infow("running job immediately", "job", job.Name())
	return job.Run()
}

func (s *Scheduler) run(job Job) {
	s.log.Debugw("running job", "job", job.Name())
	if err := job.Run(); err != nil {
		s.log.Errorw("job failed", "job", job.Name(), "error", err)
		return
	}
	s.log.Debugw("job completed", "job", job.Name())
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
