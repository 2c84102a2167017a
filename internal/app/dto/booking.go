package dto

import (
	"time"

	domainbooking "rara/internal/domain/booking"
	"rara/internal/domain/pricing"
	"rara/internal/domain/shared/daterange"
)

type Party struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Dates struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Booking struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"propertyId"`
	PropertyTitle string    `json:"propertyTitle"`
	Guest         Party     `json:"guest"`
	Host          Party     `json:"host"`
	Dates         Dates     `json:"dates"`
	Nights        int       `json:"nights"`
	Subtotal      int64     `json:"subtotal"`
	Fee           int64     `json:"fee"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

func MapDates(r daterange.DateRange) Dates {
	return Dates{From: r.CheckIn.Format(daterange.DayLayout), To: r.CheckOut.Format(daterange.DayLayout)}
}

func MapBooking(b *domainbooking.Booking) Booking {
	return Booking{
		ID:            string(b.ID),
		PropertyID:    string(b.PropertyID),
		PropertyTitle: b.PropertyTitle,
		Guest:         Party{ID: b.Guest.ID, Name: b.Guest.Name},
		Host:          Party{ID: b.Host.ID, Name: b.Host.Name},
		Dates:         MapDates(b.Range),
		Nights:        b.Price.Nights,
		Subtotal:      b.Price.Subtotal.Amount,
		Fee:           b.Price.PlatformFee().Amount,
		Amount:        b.Price.Total.Amount,
		Currency:      b.Price.Total.Currency,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func MapBookings(list []*domainbooking.Booking) BookingCollection {
	items := make([]Booking, 0, len(list))
	for _, b := range list {
		items = append(items, MapBooking(b))
	}
	return BookingCollection{Items: items}
}

// Quote is the booking widget price summary.
type Quote struct {
	PropertyID    string `json:"propertyId"`
	Dates         Dates  `json:"dates"`
	Nights        int    `json:"nights"`
	PricePerNight int64  `json:"pricePerNight"`
	Subtotal      int64  `json:"subtotal"`
	Fee           int64  `json:"fee"`
	Total         int64  `json:"total"`
	Currency      string `json:"currency"`
	Available     bool   `json:"available"`
}

func MapQuote(propertyID string, r daterange.DateRange, p pricing.PriceBreakdown, available bool) Quote {
	return Quote{
		PropertyID:    propertyID,
		Dates:         MapDates(r),
		Nights:        p.Nights,
		PricePerNight: p.Nightly.Amount,
		Subtotal:      p.Subtotal.Amount,
		Fee:           p.PlatformFee().Amount,
		Total:         p.Total.Amount,
		Currency:      p.Nightly.Currency,
		Available:     available,
	}
}
