package reviews

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrInvalidRating    = errors.New("reviews: rating must be between 1 and 5")
	ErrCommentLength    = errors.New("reviews: comment must be between 10 and 500 characters")
	ErrBookingRequired  = errors.New("reviews: booking id is required")
	ErrDuplicateBooking = errors.New("reviews: booking already reviewed")
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10
	MaxCommentLength = 500
)

type ReviewID string

type Author struct {
	ID     string `bson:"id"`
	Name   string `bson:"name"`
	Avatar string `bson:"avatar"`
}

// Review is immutable once submitted.
type Review struct {
	ID        ReviewID  `bson:"id"`
	BookingID string    `bson:"booking_id"`
	Author    Author    `bson:"author"`
	Rating    float64   `bson:"rating"`
	Comment   string    `bson:"comment"`
	CreatedAt time.Time `bson:"created_at"`
}

type SubmitParams struct {
	ID        ReviewID
	BookingID string
	Author    Author
	Rating    float64
	Comment   string
	CreatedAt time.Time
}

// Submit validates a guest submission.
func Submit(params SubmitParams) (Review, error) {
	if strings.TrimSpace(params.BookingID) == "" {
		return Review{}, ErrBookingRequired
	}
	if err := ValidateRating(params.Rating); err != nil {
		return Review{}, err
	}
	comment := strings.TrimSpace(params.Comment)
	if n := utf8.RuneCountInString(comment); n < MinCommentLength || n > MaxCommentLength {
		return Review{}, ErrCommentLength
	}
	return Review{
		ID:        params.ID,
		BookingID: strings.TrimSpace(params.BookingID),
		Author:    params.Author,
		Rating:    params.Rating,
		Comment:   comment,
		CreatedAt: params.CreatedAt.UTC(),
	}, nil
}

func ValidateRating(rating float64) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// DisplayDate renders the month the review was written, e.g. "October 2024".
func (r Review) DisplayDate() string {
	return r.CreatedAt.Format("January 2006")
}

// Mean returns the arithmetic mean rating, or zero for no reviews.
func Mean(list []Review) float64 {
	if len(list) == 0 {
		return 0
	}
	var total float64
	for _, r := range list {
		total += r.Rating
	}
	return total / float64(len(list))
}

// Distribution counts reviews per star, 1 through 5. A fractional rating
// counts toward the star below it, so 4.6 is a four-star review.
func Distribution(list []Review) map[int]int {
	out := make(map[int]int, MaxRating)
	for star := MinRating; star <= MaxRating; star++ {
		out[star] = 0
	}
	for _, r := range list {
		star := int(math.Floor(r.Rating))
		switch {
		case star < MinRating:
			star = MinRating
		case star > MaxRating:
			star = MaxRating
		}
		out[star]++
	}
	return out
}
