package property

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rara/internal/domain/reviews"
	"rara/internal/domain/shared/money"
)

var now = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func newProperty(t *testing.T) *Property {
	t.Helper()
	p, err := New(CreateParams{
		ID:            "P001",
		Title:         "Cozy loft",
		Type:          "Apartment",
		Location:      "Da Nang",
		PricePerNight: money.Money{Amount: 200000},
		MaxGuests:     2,
		Bedrooms:      1,
		Bathrooms:     1,
		Host:          Host{ID: "H1", Name: "Sarah"},
		Amenities:     []string{"Wifi", "wifi", " Pool "},
		Now:           now,
	})
	require.NoError(t, err)
	return p
}

func review(t *testing.T, bookingID string, rating float64) reviews.Review {
	t.Helper()
	r, err := reviews.Submit(reviews.SubmitParams{
		ID:        reviews.ReviewID("R-" + bookingID),
		BookingID: bookingID,
		Author:    reviews.Author{ID: "G1", Name: "Guest"},
		Rating:    rating,
		Comment:   "Lovely stay, would return.",
		CreatedAt: now,
	})
	require.NoError(t, err)
	return r
}

func TestNewAppliesDefaults(t *testing.T) {
	p := newProperty(t)

	assert.Equal(t, StatusPendingReview, p.Status)
	assert.Equal(t, 1, p.Beds)
	assert.Equal(t, "No description provided.", p.Description)
	assert.Equal(t, []string{"No smoking", "No parties or events"}, p.Rules)
	assert.Equal(t, []string{"Wifi", "Pool"}, p.Amenities)
	assert.Equal(t, money.DefaultCurrency, p.PricePerNight.Currency)
	assert.False(t, p.Bookable())
}

func TestNewValidatesRequiredFields(t *testing.T) {
	_, err := New(CreateParams{Title: "x", Type: "House", Location: "Hue", Host: Host{ID: "H1"}, MaxGuests: 1})
	assert.ErrorIs(t, err, ErrNightlyRate)

	_, err = New(CreateParams{Title: "x", Type: "House", Location: "Hue", Host: Host{ID: "H1"}, PricePerNight: money.Money{Amount: 5}})
	assert.ErrorIs(t, err, ErrCapacity)

	_, err = New(CreateParams{Title: "x", Type: "House", Location: "Hue", PricePerNight: money.Money{Amount: 5}, MaxGuests: 1})
	assert.ErrorIs(t, err, ErrHostRequired)
}

func TestRatingIsMeanOfReviews(t *testing.T) {
	p := newProperty(t)

	require.NoError(t, p.AddReview(review(t, "BK1", 5), now))
	require.NoError(t, p.AddReview(review(t, "BK2", 4), now))
	require.NoError(t, p.AddReview(review(t, "BK3", 3), now))

	assert.InDelta(t, 4.0, p.Rating, 1e-9)
	assert.Equal(t, 3, p.ReviewsCount)
	assert.Equal(t, "BK3", p.Reviews[0].BookingID, "newest first")
}

func TestAddReviewRejectsDuplicateBooking(t *testing.T) {
	p := newProperty(t)
	require.NoError(t, p.AddReview(review(t, "BK1", 5), now))

	err := p.AddReview(review(t, "BK1", 1), now)
	assert.ErrorIs(t, err, reviews.ErrDuplicateBooking)
	assert.Equal(t, 1, p.ReviewsCount)
	assert.InDelta(t, 5.0, p.Rating, 1e-9)
}

func TestUpdateKeepsModerationFields(t *testing.T) {
	p := newProperty(t)
	require.NoError(t, p.SetStatus(StatusPublished, now))
	price := int64(250000)
	title := "  Sunny loft "

	require.NoError(t, p.Update(Patch{Title: &title, PricePerNight: &price}, now))
	assert.Equal(t, "Sunny loft", p.Title)
	assert.Equal(t, int64(250000), p.PricePerNight.Amount)
	assert.Equal(t, StatusPublished, p.Status)

	zero := 0
	assert.ErrorIs(t, p.Update(Patch{MaxGuests: &zero}, now), ErrCapacity)
	assert.Equal(t, 2, p.MaxGuests)
}

func TestSetStatusOnlyModerationTargets(t *testing.T) {
	p := newProperty(t)
	assert.ErrorIs(t, p.SetStatus(StatusPendingReview, now), ErrInvalidStatus)
	require.NoError(t, p.SetStatus(StatusDisabled, now))
	assert.Equal(t, StatusDisabled, p.Status)
}

func TestHasAmenitiesIsCaseInsensitive(t *testing.T) {
	p := newProperty(t)
	assert.True(t, p.HasAmenities([]string{"wifi", "POOL"}))
	assert.False(t, p.HasAmenities([]string{"Kitchen"}))
}
