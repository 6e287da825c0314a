package contextutils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocationOrLocal(t *testing.T) {
	loc, err := LoadLocationOrLocal("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = LoadLocationOrLocal("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	loc, err = LoadLocationOrLocal("Not/AZone")
	require.Error(t, err)
	assert.Equal(t, time.Local, loc)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestTimeUntilMidnight(t *testing.T) {
	now := time.Date(2024, 3, 10, 22, 30, 15, 0, time.UTC)
	assert.Equal(t, time.Hour+29*time.Minute+45*time.Second, TimeUntilMidnight(now))

	endOfMonth := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), StartOfNextDay(endOfMonth))
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{name: "zero", d: 0, expected: "00:00:00"},
		{name: "negative", d: -5 * time.Second, expected: "00:00:00"},
		{name: "sub second truncates", d: 1500 * time.Millisecond, expected: "00:00:01"},
		{name: "full day", d: 23*time.Hour + 59*time.Minute + 59*time.Second, expected: "23:59:59"},
		{name: "minutes", d: 5*time.Minute + 3*time.Second, expected: "00:05:03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCountdown(tt.d))
		})
	}
}
