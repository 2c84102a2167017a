package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNormalisesToUTCDays(t *testing.T) {
	dr, err := Parse("2030-01-10", "2030-01-12T18:30:00+07:00")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC), dr.CheckIn)
	assert.Equal(t, time.Date(2030, 1, 12, 0, 0, 0, 0, time.UTC), dr.CheckOut)
	assert.Equal(t, 2, dr.Nights())
	assert.Equal(t, "2030-01-10/2030-01-12", dr.String())
}

func TestParseRejectsEmptyAndInvertedRanges(t *testing.T) {
	_, err := Parse("2030-01-10", "2030-01-10")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Parse("2030-01-12", "2030-01-10")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Parse("10/01/2030", "2030-01-12")
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestDaysExcludeCheckout(t *testing.T) {
	dr, err := Parse("2030-02-27", "2030-03-02")
	require.NoError(t, err)

	days := dr.Days()
	require.Len(t, days, 3)
	assert.Equal(t, "2030-02-27", days[0].Format(DayLayout))
	assert.Equal(t, "2030-03-01", days[2].Format(DayLayout))
	assert.False(t, dr.ContainsDate(dr.CheckOut))
	assert.True(t, dr.ContainsDate(dr.CheckIn))
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a, _ := Parse("2030-05-01", "2030-05-05")
	b, _ := Parse("2030-05-05", "2030-05-08")
	c, _ := Parse("2030-05-04", "2030-05-06")

	assert.False(t, a.Overlaps(b))
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(b))
}

func TestLimitBoundsRangeLength(t *testing.T) {
	year, err := Parse("2030-01-01", "2031-01-02")
	require.NoError(t, err)
	assert.NoError(t, year.Limit(MaxWindowDays))

	huge, err := Parse("1000-01-01", "9999-12-31")
	require.NoError(t, err)
	assert.ErrorIs(t, huge.Limit(MaxWindowDays), ErrRangeTooLong)
}
