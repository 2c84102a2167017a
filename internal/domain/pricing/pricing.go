package pricing

import (
	"errors"

	"rara/internal/domain/shared/daterange"
	"rara/internal/domain/shared/money"
)

var (
	ErrNoNights      = errors.New("pricing: stay must be at least one night")
	ErrInvalidRate   = errors.New("pricing: nightly rate must be positive")
	ErrCurrencyUnset = errors.New("pricing: currency must be defined")
	ErrStayTooLong   = errors.New("pricing: stay exceeds the maximum number of nights")
	ErrRateTooHigh   = errors.New("pricing: nightly rate exceeds the maximum")
)

// PlatformFeeBasisPoints is the platform service fee: 10% of the nightly subtotal.
const PlatformFeeBasisPoints int64 = 1000

const (
	// MaxNights is the longest stay that can be quoted or booked.
	MaxNights = 365
	// MaxNightlyRate bounds listing prices so quotes stay well inside int64.
	MaxNightlyRate int64 = 1_000_000_000_000
)

// Fee is a named surcharge on top of the nightly subtotal.
type Fee struct {
	Name   string      `json:"name" bson:"name"`
	Amount money.Money `json:"amount" bson:"amount"`
}

// PriceBreakdown is the quote shown to a guest and stored on the booking.
type PriceBreakdown struct {
	Nights   int         `json:"nights" bson:"nights"`
	Nightly  money.Money `json:"nightly" bson:"nightly"`
	Subtotal money.Money `json:"subtotal" bson:"subtotal"`
	Fees     []Fee       `json:"fees" bson:"fees"`
	Total    money.Money `json:"total" bson:"total"`
}

// Quote prices a stay: nights × nightly rate plus the platform fee.
func Quote(nightly money.Money, stay daterange.DateRange) (PriceBreakdown, error) {
	return QuoteNights(nightly, stay.Nights())
}

// QuoteNights is Quote for a precomputed night count.
func QuoteNights(nightly money.Money, nights int) (PriceBreakdown, error) {
	if nightly.Currency == "" {
		return PriceBreakdown{}, ErrCurrencyUnset
	}
	if nightly.Amount <= 0 {
		return PriceBreakdown{}, ErrInvalidRate
	}
	if nightly.Amount > MaxNightlyRate {
		return PriceBreakdown{}, ErrRateTooHigh
	}
	if nights <= 0 {
		return PriceBreakdown{Nightly: nightly, Total: money.Money{Currency: nightly.Currency}}, ErrNoNights
	}
	if nights > MaxNights {
		return PriceBreakdown{}, ErrStayTooLong
	}
	subtotal, err := nightly.Multiply(int64(nights))
	if err != nil {
		return PriceBreakdown{}, err
	}
	fee, err := subtotal.Percent(PlatformFeeBasisPoints)
	if err != nil {
		return PriceBreakdown{}, err
	}
	p := PriceBreakdown{
		Nights:  nights,
		Nightly: nightly,
		Fees:    []Fee{{Name: "platform_fee", Amount: fee}},
	}
	if err := p.RecalculateTotal(); err != nil {
		return PriceBreakdown{}, err
	}
	return p, nil
}

// PlatformFee returns the platform fee component or zero.
func (p PriceBreakdown) PlatformFee() money.Money {
	for _, fee := range p.Fees {
		if fee.Name == "platform_fee" {
			return fee.Amount
		}
	}
	return money.Money{Currency: p.Nightly.Currency}
}

func (p *PriceBreakdown) RecalculateTotal() error {
	if p.Nights <= 0 {
		return ErrNoNights
	}
	subtotal, err := p.Nightly.Multiply(int64(p.Nights))
	if err != nil {
		return err
	}
	p.Subtotal = subtotal
	total := p.Subtotal
	for _, fee := range p.Fees {
		next, err := total.Add(fee.Amount)
		if err != nil {
			return err
		}
		total = next
	}
	p.Total = total
	return nil
}

func (p PriceBreakdown) Copy() PriceBreakdown {
	cp := p
	cp.Fees = append([]Fee(nil), p.Fees...)
	return cp
}
