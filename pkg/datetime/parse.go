// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MustParseTime parses a timestamp using the given layout and panics on
// error. This is intended for use in tests where the value is known to be
// valid.
func MustParseTime(layout, value string) time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		panic(err)
	}
	return t
}

// LocalMinutesOfDay converts a timestamp to minutes past midnight in the
// given facility location, with sub-minute precision.
func LocalMinutesOfDay(t time.Time, loc *time.Location) float64 {
	local := t.In(loc)
	return float64(local.Hour()*60+local.Minute()) + float64(local.Second())/60.0
}

// ParseClockMinutes parses an HH:MM clock string into minutes past midnight.
func ParseClockMinutes(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM clock value, got %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in clock value %q: %v", clock, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in clock value %q: %v", clock, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock value %q out of range", clock)
	}
	return hours*60 + minutes, nil
}

// MinutesBetween returns the number of minutes from start to end.
func MinutesBetween(start, end time.Time) float64 {
	return end.Sub(start).Minutes()
}
