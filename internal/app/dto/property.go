package dto

import (
	"time"

	domainproperty "rara/internal/domain/property"
	domainreviews "rara/internal/domain/reviews"
)

type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Host struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	JoinYear    int    `json:"joinYear"`
	IsSuperhost bool   `json:"isSuperhost"`
}

type Review struct {
	ID        string  `json:"id"`
	BookingID string  `json:"bookingId"`
	Author    Author  `json:"author"`
	Date      string  `json:"date"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
}

type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type Property struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Type          string    `json:"type"`
	Location      string    `json:"location"`
	Coords        Coords    `json:"coords"`
	Status        string    `json:"status"`
	PricePerNight int64     `json:"pricePerNight"`
	Currency      string    `json:"currency"`
	Rating        float64   `json:"rating"`
	ReviewsCount  int       `json:"reviewsCount"`
	MaxGuests     int       `json:"maxGuests"`
	Bedrooms      int       `json:"bedrooms"`
	Beds          int       `json:"beds"`
	Bathrooms     int       `json:"bathrooms"`
	Description   string    `json:"description"`
	Host          Host      `json:"host"`
	Amenities     []string  `json:"amenities"`
	Images        []string  `json:"images"`
	Rules         []string  `json:"rules"`
	Reviews       []Review  `json:"reviews"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type PropertyCollection struct {
	Items []Property `json:"items"`
	Total int        `json:"total"`
}

func MapReview(r domainreviews.Review) Review {
	return Review{
		ID:        string(r.ID),
		BookingID: r.BookingID,
		Author:    Author{ID: r.Author.ID, Name: r.Author.Name, Avatar: r.Author.Avatar},
		Date:      r.DisplayDate(),
		Rating:    r.Rating,
		Comment:   r.Comment,
	}
}

func MapReviews(list []domainreviews.Review) []Review {
	out := make([]Review, 0, len(list))
	for _, r := range list {
		out = append(out, MapReview(r))
	}
	return out
}

func MapProperty(p *domainproperty.Property) Property {
	return Property{
		ID:            string(p.ID),
		Title:         p.Title,
		Type:          p.Type,
		Location:      p.Location,
		Coords:        Coords{Lat: p.Coords.Lat, Lng: p.Coords.Lng},
		Status:        string(p.Status),
		PricePerNight: p.PricePerNight.Amount,
		Currency:      p.PricePerNight.Currency,
		Rating:        p.Rating,
		ReviewsCount:  p.ReviewsCount,
		MaxGuests:     p.MaxGuests,
		Bedrooms:      p.Bedrooms,
		Beds:          p.Beds,
		Bathrooms:     p.Bathrooms,
		Description:   p.Description,
		Host: Host{
			ID:          p.Host.ID,
			Name:        p.Host.Name,
			Avatar:      p.Host.Avatar,
			JoinYear:    p.Host.JoinYear,
			IsSuperhost: p.Host.IsSuperhost,
		},
		Amenities: nonNil(p.Amenities),
		Images:    nonNil(p.Images),
		Rules:     nonNil(p.Rules),
		Reviews:   MapReviews(p.Reviews),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func MapProperties(list []*domainproperty.Property) PropertyCollection {
	items := make([]Property, 0, len(list))
	for _, p := range list {
		items = append(items, MapProperty(p))
	}
	return PropertyCollection{Items: items, Total: len(items)}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
