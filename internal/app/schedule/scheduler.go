// Package schedule defines recurring background jobs that run through the
// command bus.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"rara/internal/app/commands"
	"rara/internal/app/handlers/bookings"
)

// Job is a unit of recurring work. Spec is a cron expression.
type Job interface {
	Name() string
	Spec() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs until its context is cancelled.
type Scheduler interface {
	Register(job Job) error
	Run(ctx context.Context) error
}

// CompletionSweep moves confirmed stays that have checked out to Completed.
type CompletionSweep struct {
	Commands commands.Bus
	Every    string
	Clock    func() time.Time
	Logger   *slog.Logger
}

func (s *CompletionSweep) Name() string { return "completion-sweep" }

func (s *CompletionSweep) Spec() string {
	if s.Every == "" {
		return "@every 1h"
	}
	return s.Every
}

func (s *CompletionSweep) Run(ctx context.Context) error {
	today := time.Now().UTC()
	if s.Clock != nil {
		today = s.Clock().UTC()
	}
	result, err := commands.Dispatch[bookings.CompleteStaysCommand, bookings.CompleteStaysResult](ctx, s.Commands, bookings.CompleteStaysCommand{Today: today})
	if err != nil {
		return err
	}
	if s.Logger != nil && len(result.Completed) > 0 {
		s.Logger.Info("stays completed", "count", len(result.Completed))
	}
	return nil
}
