// Package schedule runs application jobs on cron expressions.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appschedule "rara/internal/app/schedule"
)

// Cron runs each registered job on its spec. A job still running when its
// next tick arrives is skipped.
type Cron struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration

	mu   sync.Mutex
	ctx  context.Context
	jobs []appschedule.Job
}

func NewCron(logger *slog.Logger, timeout time.Duration) *Cron {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cron{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		timeout: timeout,
		ctx:     context.Background(),
	}
}

func (c *Cron) Register(job appschedule.Job) error {
	if _, err := c.cron.AddFunc(job.Spec(), func() { c.run(job) }); err != nil {
		return err
	}
	c.mu.Lock()
	c.jobs = append(c.jobs, job)
	c.mu.Unlock()
	c.logger.Info("job scheduled", "job", job.Name(), "spec", job.Spec())
	return nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to return.
func (c *Cron) Run(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
	c.cron.Start()
	<-ctx.Done()
	<-c.cron.Stop().Done()
	return ctx.Err()
}

// RunNow executes every registered job once, in registration order.
func (c *Cron) RunNow(ctx context.Context) {
	c.mu.Lock()
	jobs := append([]appschedule.Job(nil), c.jobs...)
	c.mu.Unlock()
	for _, job := range jobs {
		c.execute(ctx, job)
	}
}

func (c *Cron) run(job appschedule.Job) {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	c.execute(ctx, job)
}

func (c *Cron) execute(ctx context.Context, job appschedule.Job) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		c.logger.Error("job failed", "job", job.Name(), "error", err)
		return
	}
	c.logger.Debug("job finished", "job", job.Name(), "duration", time.Since(start))
}

var _ appschedule.Scheduler = (*Cron)(nil)
