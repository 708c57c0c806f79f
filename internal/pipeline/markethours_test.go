package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestIsMarketOpen(t *testing.T) {
	loc := eastern(t)

	cases := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"tuesday midday", time.Date(2025, 7, 8, 12, 0, 0, 0, loc), true},
		{"opening bell", time.Date(2025, 7, 8, 9, 30, 0, 0, loc), true},
		{"one minute before open", time.Date(2025, 7, 8, 9, 29, 0, 0, loc), false},
		{"closing bell", time.Date(2025, 7, 8, 16, 0, 0, 0, loc), false},
		{"last minute", time.Date(2025, 7, 8, 15, 59, 0, 0, loc), true},
		{"saturday", time.Date(2025, 7, 12, 12, 0, 0, 0, loc), false},
		{"sunday", time.Date(2025, 7, 13, 12, 0, 0, 0, loc), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.open, IsMarketOpen(tc.at, loc))
		})
	}
}

func TestIsMarketOpen_ConvertsToMarketTimezone(t *testing.T) {
	loc := eastern(t)

	// 13:00 UTC de un martes de julio = 9:00 ET → cerrado
	utc := time.Date(2025, 7, 8, 13, 0, 0, 0, time.UTC)
	assert.False(t, IsMarketOpen(utc, loc))

	// 14:00 UTC = 10:00 ET → abierto
	utc = time.Date(2025, 7, 8, 14, 0, 0, 0, time.UTC)
	assert.True(t, IsMarketOpen(utc, loc))
}
