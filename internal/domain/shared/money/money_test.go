package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiplyDetectsOverflow(t *testing.T) {
	m := Must(10_000_000_000_000, "VND")

	got, err := m.Multiply(1098)
	require.NoError(t, err)
	assert.Equal(t, int64(10_980_000_000_000_000), got.Amount)

	_, err = m.Multiply(1_000_000)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = m.Multiply(-1)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestPercentRoundsHalfUpWithoutOverflow(t *testing.T) {
	fee, err := Must(125, "USD").Percent(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(13), fee.Amount)

	// amount × basis points exceeds int64 but the result does not.
	fee, err = Must(10_980_000_000_000_000, "VND").Percent(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_098_000_000_000_000), fee.Amount)

	_, err = Must(math.MaxInt64, "VND").Percent(20000)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestAddDetectsOverflow(t *testing.T) {
	_, err := Must(math.MaxInt64, "VND").Add(Must(1, "VND"))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Must(1, "VND").Add(Must(1, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}
