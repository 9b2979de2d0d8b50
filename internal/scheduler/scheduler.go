// Package scheduler runs periodic jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 30 * time.Minute

type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. A job that is still running when its next
// tick arrives skips that tick, so runs never overlap.
type Scheduler struct {
	cron *cron.Cron
	jobs map[string]cron.EntryID
	ctx  context.Context
}

func New(ctx context.Context, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		jobs: make(map[string]cron.EntryID),
		ctx:  ctx,
	}
}

// AddJob schedules job. schedule accepts standard five-field specs and
// descriptors such as "@every 6h" or "@daily".
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunNow(name, job); err != nil {
			slog.Error("[Scheduler] Job failed",
				slog.String("job", name),
				slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("[Scheduler] failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	slog.Info("[Scheduler] Added job",
		slog.String("job", name),
		slog.String("schedule", schedule))
	return nil
}

// RunNow executes job immediately on the caller's goroutine.
func (s *Scheduler) RunNow(name string, job Job) error {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	slog.Info("[Scheduler] Starting job", slog.String("job", name))
	start := time.Now()
	if err := job(ctx); err != nil {
		return err
	}
	slog.Info("[Scheduler] Job completed",
		slog.String("job", name),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.jobs[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("[Scheduler] Starting scheduler")
	s.cron.Start()
	<-ctx.Done()
	slog.Info("[Scheduler] Stopping scheduler")
	<-s.cron.Stop().Done()
}
