package reviews

import (
	"context"
	"errors"
	"time"

	"rara/internal/app/access"
	"rara/internal/app/commands"
	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/outbox"
	"rara/internal/app/uow"
	domainbooking "rara/internal/domain/booking"
	domainproperty "rara/internal/domain/property"
	domainreviews "rara/internal/domain/reviews"
)

const submitReviewKey = "reviews.submit"

var (
	ErrStayNotCompleted = errors.New("reviews: only completed stays can be reviewed")
	ErrBookingMismatch  = errors.New("reviews: booking is for a different listing")
)

type SubmitReviewCommand struct {
	ReviewID   string `validate:"required"`
	Actor      access.Actor
	PropertyID string  `validate:"required"`
	BookingID  string  `validate:"required"`
	Rating     float64 `validate:"gte=1,lte=5"`
	Comment    string  `validate:"min=10,max=500"`
}

func (c SubmitReviewCommand) Key() string          { return submitReviewKey }
func (c SubmitReviewCommand) Caller() access.Actor { return c.Actor }

// SubmitReviewHandler lets the guest of a completed stay review it once.
type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      func() time.Time
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	var result dto.Review
	err := uow.Run(ctx, h.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		now := support.Now(h.Clock)
		b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
		if err != nil {
			return err
		}
		if b.Guest.ID != cmd.Actor.ID {
			return support.ErrNotOwner
		}
		if string(b.PropertyID) != cmd.PropertyID {
			return ErrBookingMismatch
		}
		if b.Status != domainbooking.StatusCompleted {
			return ErrStayNotCompleted
		}
		p, err := unit.Properties().ByID(ctx, domainproperty.ID(cmd.PropertyID))
		if err != nil {
			return err
		}
		review, err := domainreviews.Submit(domainreviews.SubmitParams{
			ID:        domainreviews.ReviewID(cmd.ReviewID),
			BookingID: cmd.BookingID,
			Author:    domainreviews.Author{ID: cmd.Actor.ID, Name: cmd.Actor.Name, Avatar: cmd.Actor.Avatar},
			Rating:    cmd.Rating,
			Comment:   cmd.Comment,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		if err := p.AddReview(review, now); err != nil {
			return err
		}
		if err := unit.Properties().Save(ctx, p); err != nil {
			return err
		}
		if err := outbox.RecordFrom(ctx, h.Outbox, h.Encoder, p); err != nil {
			return err
		}
		result = dto.MapReview(review)
		return nil
	})
	return result, err
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
