package bookings

import (
	"context"
	"log/slog"
	"time"

	"rara/internal/app/commands"
	"rara/internal/app/handlers/support"
	"rara/internal/app/outbox"
	"rara/internal/app/uow"
	domainbooking "rara/internal/domain/booking"
)

const completeStaysKey = "bookings.complete_stays"

// CompleteStaysCommand completes every confirmed booking whose checkout day
// is today or earlier. It is issued by the scheduler, not by users.
type CompleteStaysCommand struct {
	Today time.Time
}

func (c CompleteStaysCommand) Key() string { return completeStaysKey }

type CompleteStaysResult struct {
	Completed []string `json:"completed"`
}

type CompleteStaysHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
	Logger     *slog.Logger
}

func (h *CompleteStaysHandler) Handle(ctx context.Context, cmd CompleteStaysCommand) (CompleteStaysResult, error) {
	result := CompleteStaysResult{Completed: []string{}}
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		now := support.Now(h.Clock)
		today := cmd.Today
		if today.IsZero() {
			today = now
		}
		confirmed, err := unit.Bookings().List(ctx, domainbooking.Filter{Statuses: []domainbooking.Status{domainbooking.StatusConfirmed}})
		if err != nil {
			return err
		}
		for _, b := range confirmed {
			if !b.StayEnded(today) {
				continue
			}
			if err := b.Complete(now); err != nil {
				return err
			}
			if err := unit.Bookings().Save(ctx, b); err != nil {
				return err
			}
			if err := outbox.RecordFrom(ctx, h.Outbox, h.Encoder, b); err != nil {
				return err
			}
			result.Completed = append(result.Completed, string(b.ID))
		}
		return nil
	})
	if err != nil {
		return CompleteStaysResult{}, err
	}
	if h.Logger != nil && len(result.Completed) > 0 {
		h.Logger.Info("stays completed", "count", len(result.Completed))
	}
	return result, nil
}

var _ commands.Handler[CompleteStaysCommand, CompleteStaysResult] = (*CompleteStaysHandler)(nil)
