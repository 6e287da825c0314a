package contextutils

import (
	"fmt"
	"time"
)

// LoadLocationOrLocal resolves an IANA time zone name. An empty name or "Local"
// yields time.Local; an unknown name falls back to time.Local and is reported
// through the returned error so the caller can log it.
func LoadLocationOrLocal(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, WrapErrorf(ErrInvalidInput, "unknown time zone %q: %v", name, err)
	}
	return loc, nil
}

// StartOfNextDay returns local midnight following t, in t's location.
func StartOfNextDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// TimeUntilMidnight returns how long remains until the next local midnight.
func TimeUntilMidnight(now time.Time) time.Duration {
	return StartOfNextDay(now).Sub(now)
}

// FormatCountdown renders a duration as HH:MM:SS, truncating to whole seconds.
// Negative durations render as 00:00:00.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
