package calendar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/tax-engine/calendar"
)

func TestUVTValue(t *testing.T) {
	v2025, err := calendar.UVTValue(2025)
	require.NoError(t, err)
	assert.Equal(t, "49799", v2025.String())

	v2026, err := calendar.UVTValue(2026)
	require.NoError(t, err)
	assert.Equal(t, "52374", v2026.String())

	_, err = calendar.UVTValue(2019)
	assert.ErrorIs(t, err, calendar.ErrUnsupportedYear)
}

func TestMinimumPenalty_RoundedToThousand(t *testing.T) {
	// 10 UVT, rounded to the nearest thousand pesos.
	p2025, err := calendar.MinimumPenalty(2025)
	require.NoError(t, err)
	assert.Equal(t, "498000", p2025.String(), "497990 rounds up")

	p2026, err := calendar.MinimumPenalty(2026)
	require.NoError(t, err)
	assert.Equal(t, "524000", p2026.String(), "523740 rounds up")
}
