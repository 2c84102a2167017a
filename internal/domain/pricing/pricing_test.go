package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rara/internal/domain/shared/daterange"
	"rara/internal/domain/shared/money"
)

func TestQuoteAddsTenPercentPlatformFee(t *testing.T) {
	quote, err := QuoteNights(money.Must(100, "USD"), 4)
	require.NoError(t, err)

	assert.Equal(t, 4, quote.Nights)
	assert.Equal(t, int64(400), quote.Subtotal.Amount)
	assert.Equal(t, int64(40), quote.PlatformFee().Amount)
	assert.Equal(t, int64(440), quote.Total.Amount)
}

func TestQuoteForStayRange(t *testing.T) {
	stay, err := daterange.Parse("2030-03-10", "2030-03-15")
	require.NoError(t, err)

	quote, err := Quote(money.Must(200000, money.DefaultCurrency), stay)
	require.NoError(t, err)

	assert.Equal(t, 5, quote.Nights)
	assert.Equal(t, int64(1000000), quote.Subtotal.Amount)
	assert.Equal(t, int64(100000), quote.PlatformFee().Amount)
	assert.Equal(t, int64(1100000), quote.Total.Amount)
}

func TestQuoteRoundsFeeToNearestUnit(t *testing.T) {
	quote, err := QuoteNights(money.Must(125, "USD"), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(13), quote.PlatformFee().Amount)
	assert.Equal(t, int64(138), quote.Total.Amount)
}

func TestQuoteRejectsZeroNights(t *testing.T) {
	quote, err := QuoteNights(money.Must(100, "USD"), 0)
	assert.ErrorIs(t, err, ErrNoNights)
	assert.True(t, quote.Total.IsZero())
}

func TestQuoteRejectsInvalidRate(t *testing.T) {
	_, err := QuoteNights(money.Money{Amount: 0, Currency: "USD"}, 3)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = QuoteNights(money.Money{Amount: 10}, 3)
	assert.ErrorIs(t, err, ErrCurrencyUnset)
}

func TestCopyDetachesFees(t *testing.T) {
	quote, err := QuoteNights(money.Must(100, "USD"), 2)
	require.NoError(t, err)

	cp := quote.Copy()
	cp.Fees[0].Amount = money.Must(1, "USD")
	assert.Equal(t, int64(20), quote.Fees[0].Amount.Amount)
}

func TestQuoteRejectsOversizedInputs(t *testing.T) {
	_, err := QuoteNights(money.Must(MaxNightlyRate+1, "VND"), 1)
	assert.ErrorIs(t, err, ErrRateTooHigh)

	_, err = QuoteNights(money.Must(100, "VND"), MaxNights+1)
	assert.ErrorIs(t, err, ErrStayTooLong)

	quote, err := QuoteNights(money.Must(MaxNightlyRate, "VND"), MaxNights)
	require.NoError(t, err)
	assert.Equal(t, MaxNightlyRate*MaxNights, quote.Subtotal.Amount)
	assert.Equal(t, MaxNightlyRate*MaxNights/10, quote.PlatformFee().Amount)
	assert.Equal(t, quote.Subtotal.Amount+quote.PlatformFee().Amount, quote.Total.Amount)
}
