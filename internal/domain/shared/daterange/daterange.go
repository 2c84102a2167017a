package daterange

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDay   = errors.New("daterange: day must be formatted as YYYY-MM-DD")
	ErrRangeTooLong = errors.New("daterange: range is too long")
)

// DayLayout is the wire format for calendar days.
const DayLayout = "2006-01-02"

// MaxWindowDays bounds calendar, report and block windows.
const MaxWindowDays = 366

// DateRange represents a half-open interval of calendar days [CheckIn, CheckOut).
// Both ends are normalised to UTC midnight.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Parse builds a range from two YYYY-MM-DD strings.
func Parse(from, to string) (DateRange, error) {
	checkIn, err := ParseDay(from)
	if err != nil {
		return DateRange{}, err
	}
	checkOut, err := ParseDay(to)
	if err != nil {
		return DateRange{}, err
	}
	return New(checkIn, checkOut)
}

// ParseDay accepts YYYY-MM-DD or a full RFC3339 timestamp and returns the UTC day.
func ParseDay(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDay
	}
	if t, err := time.Parse(DayLayout, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return Day(t), nil
	}
	return time.Time{}, ErrInvalidDay
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts whole calendar days between the ends.
func (dr DateRange) Nights() int {
	if !dr.CheckOut.After(dr.CheckIn) {
		return 0
	}
	return int(Day(dr.CheckOut).Sub(Day(dr.CheckIn)).Hours() / 24)
}

// Limit fails with ErrRangeTooLong when the range spans more than maxDays nights.
func (dr DateRange) Limit(maxDays int) error {
	if dr.Nights() > maxDays {
		return ErrRangeTooLong
	}
	return nil
}

// Days lists each night of the stay, excluding the checkout day.
func (dr DateRange) Days() []time.Time {
	n := dr.Nights()
	out := make([]time.Time, 0, n)
	start := Day(dr.CheckIn)
	for i := 0; i < n; i++ {
		out = append(out, start.AddDate(0, 0, i))
	}
	return out
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

func (dr DateRange) String() string {
	return dr.CheckIn.Format(DayLayout) + "/" + dr.CheckOut.Format(DayLayout)
}
