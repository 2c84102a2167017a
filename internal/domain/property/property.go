package property

import (
	"context"
	"errors"
	"strings"
	"time"

	"rara/internal/domain/pricing"
	"rara/internal/domain/reviews"
	"rara/internal/domain/shared/events"
	"rara/internal/domain/shared/money"
)

var (
	ErrNotFound         = errors.New("property: not found")
	ErrTitleRequired    = errors.New("property: title is required")
	ErrTypeRequired     = errors.New("property: type is required")
	ErrLocationRequired = errors.New("property: location is required")
	ErrHostRequired     = errors.New("property: host is required")
	ErrNightlyRate      = errors.New("property: price per night must be positive and at most 1000000000000")
	ErrCapacity         = errors.New("property: max guests must be at least 1 and room counts non-negative")
	ErrInvalidStatus    = errors.New("property: status must be Published or Disabled")
	ErrNotBookable      = errors.New("property: listing is not published")
)

type ID string

type Status string

const (
	StatusPublished     Status = "Published"
	StatusPendingReview Status = "Pending Review"
	StatusDisabled      Status = "Disabled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPublished, StatusPendingReview, StatusDisabled:
		return true
	}
	return false
}

const defaultDescription = "No description provided."

var defaultRules = []string{"No smoking", "No parties or events"}

// Host is the owner snapshot shown on a listing.
type Host struct {
	ID          string `bson:"id"`
	Name        string `bson:"name"`
	Avatar      string `bson:"avatar"`
	JoinYear    int    `bson:"join_year"`
	IsSuperhost bool   `bson:"is_superhost"`
}

type Coords struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

type Property struct {
	ID            ID
	Title         string
	Type          string
	Location      string
	Coords        Coords
	Status        Status
	PricePerNight money.Money
	Rating        float64
	ReviewsCount  int
	MaxGuests     int
	Bedrooms      int
	Beds          int
	Bathrooms     int
	Description   string
	Host          Host
	Amenities     []string
	Images        []string
	Rules         []string
	Reviews       []reviews.Review
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

// Repository stores properties in listing order, newest first.
type Repository interface {
	ByID(ctx context.Context, id ID) (*Property, error)
	List(ctx context.Context, filter Filter) ([]*Property, error)
	Add(ctx context.Context, p *Property) error
	Save(ctx context.Context, p *Property) error
	Delete(ctx context.Context, id ID) error
}

// Filter narrows List; zero values match everything.
type Filter struct {
	HostID string
	Status Status
}

type CreateParams struct {
	ID            ID
	Title         string
	Type          string
	Location      string
	Coords        Coords
	PricePerNight money.Money
	MaxGuests     int
	Bedrooms      int
	Beds          int
	Bathrooms     int
	Description   string
	Host          Host
	Amenities     []string
	Images        []string
	Rules         []string
	Now           time.Time
}

// New creates a listing awaiting admin review.
func New(params CreateParams) (*Property, error) {
	p := &Property{
		ID:            params.ID,
		Title:         strings.TrimSpace(params.Title),
		Type:          strings.TrimSpace(params.Type),
		Location:      strings.TrimSpace(params.Location),
		Coords:        params.Coords,
		Status:        StatusPendingReview,
		PricePerNight: params.PricePerNight,
		MaxGuests:     params.MaxGuests,
		Bedrooms:      params.Bedrooms,
		Beds:          params.Beds,
		Bathrooms:     params.Bathrooms,
		Description:   strings.TrimSpace(params.Description),
		Host:          params.Host,
		Amenities:     normalizeSet(params.Amenities),
		Images:        compact(params.Images),
		Rules:         compact(params.Rules),
		CreatedAt:     params.Now.UTC(),
		UpdatedAt:     params.Now.UTC(),
	}
	if strings.TrimSpace(p.Host.ID) == "" {
		return nil, ErrHostRequired
	}
	if p.Beds == 0 {
		p.Beds = p.Bedrooms
	}
	if p.Description == "" {
		p.Description = defaultDescription
	}
	if len(p.Rules) == 0 {
		p.Rules = append([]string(nil), defaultRules...)
	}
	if p.PricePerNight.Currency == "" {
		p.PricePerNight.Currency = money.DefaultCurrency
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.Record(Created{PropertyID: p.ID, HostID: p.Host.ID, Title: p.Title, At: p.CreatedAt})
	return p, nil
}

func (p *Property) validate() error {
	switch {
	case p.Title == "":
		return ErrTitleRequired
	case p.Type == "":
		return ErrTypeRequired
	case p.Location == "":
		return ErrLocationRequired
	case p.PricePerNight.Amount <= 0 || p.PricePerNight.Amount > pricing.MaxNightlyRate:
		return ErrNightlyRate
	case p.MaxGuests < 1 || p.Bedrooms < 0 || p.Beds < 0 || p.Bathrooms < 0:
		return ErrCapacity
	}
	return nil
}

// Patch carries owner edits; nil fields are left unchanged.
type Patch struct {
	Title         *string
	Type          *string
	Location      *string
	Coords        *Coords
	PricePerNight *int64
	MaxGuests     *int
	Bedrooms      *int
	Beds          *int
	Bathrooms     *int
	Description   *string
	Amenities     []string
	Images        []string
	Rules         []string
}

// Update applies owner edits. Status, rating and reviews are not editable here.
func (p *Property) Update(patch Patch, now time.Time) error {
	next := *p
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Type != nil {
		next.Type = strings.TrimSpace(*patch.Type)
	}
	if patch.Location != nil {
		next.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.Coords != nil {
		next.Coords = *patch.Coords
	}
	if patch.PricePerNight != nil {
		next.PricePerNight.Amount = *patch.PricePerNight
	}
	if patch.MaxGuests != nil {
		next.MaxGuests = *patch.MaxGuests
	}
	if patch.Bedrooms != nil {
		next.Bedrooms = *patch.Bedrooms
	}
	if patch.Beds != nil {
		next.Beds = *patch.Beds
	}
	if patch.Bathrooms != nil {
		next.Bathrooms = *patch.Bathrooms
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
		if next.Description == "" {
			next.Description = defaultDescription
		}
	}
	if patch.Amenities != nil {
		next.Amenities = normalizeSet(patch.Amenities)
	}
	if patch.Images != nil {
		next.Images = compact(patch.Images)
	}
	if patch.Rules != nil {
		next.Rules = compact(patch.Rules)
	}
	if err := next.validate(); err != nil {
		return err
	}
	p.Title, p.Type, p.Location, p.Coords = next.Title, next.Type, next.Location, next.Coords
	p.PricePerNight = next.PricePerNight
	p.MaxGuests, p.Bedrooms, p.Beds, p.Bathrooms = next.MaxGuests, next.Bedrooms, next.Beds, next.Bathrooms
	p.Description = next.Description
	p.Amenities, p.Images, p.Rules = next.Amenities, next.Images, next.Rules
	p.UpdatedAt = now.UTC()
	p.Record(Updated{PropertyID: p.ID, At: p.UpdatedAt})
	return nil
}

// SetStatus is the admin moderation transition.
func (p *Property) SetStatus(status Status, now time.Time) error {
	if status != StatusPublished && status != StatusDisabled {
		return ErrInvalidStatus
	}
	previous := p.Status
	p.Status = status
	p.UpdatedAt = now.UTC()
	p.Record(StatusChanged{PropertyID: p.ID, From: previous, To: status, At: p.UpdatedAt})
	return nil
}

// MarkDeleted records the removal; the repository performs the delete.
func (p *Property) MarkDeleted(now time.Time) {
	p.Record(Deleted{PropertyID: p.ID, At: now.UTC()})
}

func (p *Property) Bookable() bool {
	return p.Status == StatusPublished
}

func (p *Property) OwnedBy(userID string) bool {
	return userID != "" && p.Host.ID == userID
}

// AddReview prepends the review and recomputes the derived rating fields.
func (p *Property) AddReview(review reviews.Review, now time.Time) error {
	if err := reviews.ValidateRating(review.Rating); err != nil {
		return err
	}
	if p.HasReviewFor(review.BookingID) {
		return reviews.ErrDuplicateBooking
	}
	p.Reviews = append([]reviews.Review{review}, p.Reviews...)
	p.refreshRating()
	p.UpdatedAt = now.UTC()
	p.Record(ReviewAdded{PropertyID: p.ID, ReviewID: review.ID, BookingID: review.BookingID, Rating: review.Rating, NewRating: p.Rating, At: p.UpdatedAt})
	return nil
}

func (p *Property) HasReviewFor(bookingID string) bool {
	for _, r := range p.Reviews {
		if r.BookingID == bookingID {
			return true
		}
	}
	return false
}

func (p *Property) refreshRating() {
	p.Rating = reviews.Mean(p.Reviews)
	p.ReviewsCount = len(p.Reviews)
}

// Restore rebuilds derived fields after loading stored reviews.
func (p *Property) Restore() {
	p.refreshRating()
}

func (p *Property) HasAmenities(required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(p.Amenities))
	for _, a := range p.Amenities {
		have[strings.ToLower(a)] = struct{}{}
	}
	for _, want := range required {
		if _, ok := have[strings.ToLower(strings.TrimSpace(want))]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy without pending events.
func (p *Property) Clone() *Property {
	cp := &Property{
		ID:            p.ID,
		Title:         p.Title,
		Type:          p.Type,
		Location:      p.Location,
		Coords:        p.Coords,
		Status:        p.Status,
		PricePerNight: p.PricePerNight,
		Rating:        p.Rating,
		ReviewsCount:  p.ReviewsCount,
		MaxGuests:     p.MaxGuests,
		Bedrooms:      p.Bedrooms,
		Beds:          p.Beds,
		Bathrooms:     p.Bathrooms,
		Description:   p.Description,
		Host:          p.Host,
		Amenities:     append([]string(nil), p.Amenities...),
		Images:        append([]string(nil), p.Images...),
		Rules:         append([]string(nil), p.Rules...),
		Reviews:       append([]reviews.Review(nil), p.Reviews...),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
	return cp
}

func normalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
