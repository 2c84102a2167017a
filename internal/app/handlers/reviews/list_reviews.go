package reviews

import (
	"context"

	"rara/internal/app/dto"
	"rara/internal/app/handlers/support"
	"rara/internal/app/queries"
	"rara/internal/app/uow"
	domainproperty "rara/internal/domain/property"
	domainreviews "rara/internal/domain/reviews"
)

const listReviewsKey = "reviews.list"

type ListReviewsQuery struct {
	PropertyID string `validate:"required"`
}

func (q ListReviewsQuery) Key() string { return listReviewsKey }

// ReviewCollection carries the listing's reviews, newest first, with the
// per-star counts keyed 1 to 5.
type ReviewCollection struct {
	Items        []dto.Review `json:"items"`
	Rating       float64      `json:"rating"`
	ReviewsCount int          `json:"reviewsCount"`
	Distribution map[int]int  `json:"distribution"`
}

type ListReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListReviewsHandler) Handle(ctx context.Context, q ListReviewsQuery) (ReviewCollection, error) {
	var result ReviewCollection
	err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		p, err := unit.Properties().ByID(ctx, domainproperty.ID(q.PropertyID))
		if err != nil {
			return err
		}
		result = ReviewCollection{
			Items:        dto.MapReviews(p.Reviews),
			Rating:       p.Rating,
			ReviewsCount: p.ReviewsCount,
			Distribution: domainreviews.Distribution(p.Reviews),
		}
		return nil
	})
	return result, err
}

var _ queries.Handler[ListReviewsQuery, ReviewCollection] = (*ListReviewsHandler)(nil)
