package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodOfNormalizes(t *testing.T) {
	p := PeriodOf(time.Date(2024, time.March, 17, 13, 45, 2, 0, time.FixedZone("ICT", 7*3600)))

	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), p.Start())
	assert.Equal(t, "2024-03", p.String())
}

func TestPeriodEquality(t *testing.T) {
	a := PeriodOf(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	b := PeriodOf(time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC))
	c := PeriodOf(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2024-03")
	require.NoError(t, err)
	assert.Equal(t, NewPeriod(2024, time.March), p)

	_, err = ParsePeriod("2024-3")
	assert.ErrorIs(t, err, ErrUnresolvablePeriod)

	_, err = ParsePeriod("march 2024")
	assert.ErrorIs(t, err, ErrUnresolvablePeriod)
}

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	bounds := PeriodBounds{MinYear: 2000, MaxYearAhead: 5}

	t.Run("valid date", func(t *testing.T) {
		p, err := ResolvePeriod(time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC), now, bounds)
		require.NoError(t, err)
		assert.Equal(t, NewPeriod(2024, time.March), p)
	})

	t.Run("zero date", func(t *testing.T) {
		_, err := ResolvePeriod(time.Time{}, now, bounds)
		assert.ErrorIs(t, err, ErrUnresolvablePeriod)
	})

	t.Run("year below minimum", func(t *testing.T) {
		_, err := ResolvePeriod(time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC), now, bounds)
		assert.ErrorIs(t, err, ErrUnresolvablePeriod)
	})

	t.Run("year too far ahead", func(t *testing.T) {
		_, err := ResolvePeriod(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC), now, bounds)
		assert.ErrorIs(t, err, ErrUnresolvablePeriod)
	})

	t.Run("boundary years accepted", func(t *testing.T) {
		_, err := ResolvePeriod(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC), now, bounds)
		assert.NoError(t, err)

		_, err = ResolvePeriod(time.Date(2029, time.December, 31, 0, 0, 0, 0, time.UTC), now, bounds)
		assert.NoError(t, err)
	})

	t.Run("zero bounds fall back to defaults", func(t *testing.T) {
		_, err := ResolvePeriod(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), now, PeriodBounds{})
		assert.NoError(t, err)
	})
}
