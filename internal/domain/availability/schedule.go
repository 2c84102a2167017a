package availability

import (
	"errors"
	"time"

	"rara/internal/domain/booking"
	"rara/internal/domain/shared/daterange"
)

var (
	ErrDateInPast  = errors.New("availability: dates before today cannot be booked")
	ErrUnavailable = errors.New("availability: requested dates are not available")
)

// Schedule is the single availability predicate for a property. A day is
// blocked when it is before today, inside a Confirmed or Completed stay, or
// inside a host block. Pending and cancelled bookings never block.
type Schedule struct {
	today  time.Time
	stays  []stay
	blocks []daterange.DateRange
}

type stay struct {
	id    booking.ID
	rng   daterange.DateRange
	total int64
}

// NewSchedule builds the predicate from the property's bookings and calendar.
// Bookings in non-blocking statuses are ignored; calendar may be nil.
func NewSchedule(today time.Time, bookings []*booking.Booking, calendar *Calendar) Schedule {
	s := Schedule{today: daterange.Day(today)}
	for _, b := range bookings {
		if b == nil || !b.Status.BlocksCalendar() {
			continue
		}
		s.stays = append(s.stays, stay{id: b.ID, rng: b.Range, total: b.Price.Total.Amount})
	}
	if calendar != nil {
		s.blocks = calendar.Ranges()
	}
	return s
}

func (s Schedule) Today() time.Time { return s.today }

// IsBlocked reports whether day cannot be booked.
func (s Schedule) IsBlocked(day time.Time) bool {
	day = daterange.Day(day)
	if day.Before(s.today) {
		return true
	}
	return s.IsReserved(day, "") || s.IsHostBlocked(day)
}

// IsReserved reports whether a blocking stay other than exclude covers day.
func (s Schedule) IsReserved(day time.Time, exclude booking.ID) bool {
	day = daterange.Day(day)
	for _, st := range s.stays {
		if st.id != exclude && st.rng.ContainsDate(day) {
			return true
		}
	}
	return false
}

func (s Schedule) IsHostBlocked(day time.Time) bool {
	day = daterange.Day(day)
	for _, b := range s.blocks {
		if b.ContainsDate(day) {
			return true
		}
	}
	return false
}

// CheckStay validates a new reservation: every night must be bookable. The
// checkout day itself is not a night and may be blocked.
func (s Schedule) CheckStay(r daterange.DateRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.CheckIn.Before(s.today) {
		return ErrDateInPast
	}
	for _, day := range r.Days() {
		if s.IsBlocked(day) {
			return ErrUnavailable
		}
	}
	return nil
}

// CheckConfirmation validates confirming an existing request. Past days are
// not rechecked; other stays and host blocks are.
func (s Schedule) CheckConfirmation(id booking.ID, r daterange.DateRange) error {
	for _, day := range r.Days() {
		if s.IsReserved(day, id) || s.IsHostBlocked(day) {
			return ErrUnavailable
		}
	}
	return nil
}

// CheckHostBlock validates a new manual block against the past and existing stays.
func (s Schedule) CheckHostBlock(r daterange.DateRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.CheckIn.Before(s.today) {
		return ErrDateInPast
	}
	for _, day := range r.Days() {
		if s.IsReserved(day, "") {
			return ErrUnavailable
		}
	}
	return nil
}

// BlockedDays lists every blocked day inside window.
func (s Schedule) BlockedDays(window daterange.DateRange) []time.Time {
	out := make([]time.Time, 0)
	for _, day := range window.Days() {
		if s.IsBlocked(day) {
			out = append(out, day)
		}
	}
	return out
}

// Occupancy summarises reserved nights inside window. Unavailable lists the
// days taken by stays or host blocks; past days are not included.
type Occupancy struct {
	Nights       int
	BookedNights int
	BlockedDays  int
	Rate         float64
	Unavailable  []time.Time
}

func (s Schedule) Occupancy(window daterange.DateRange) Occupancy {
	days := window.Days()
	occ := Occupancy{Nights: len(days), Unavailable: make([]time.Time, 0)}
	for _, day := range days {
		switch {
		case s.IsReserved(day, ""):
			occ.BookedNights++
		case s.IsHostBlocked(day):
			occ.BlockedDays++
		default:
			continue
		}
		occ.Unavailable = append(occ.Unavailable, day)
	}
	if occ.Nights > 0 {
		occ.Rate = float64(occ.BookedNights) / float64(occ.Nights)
	}
	return occ
}
