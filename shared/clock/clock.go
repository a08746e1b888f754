// Package clock handles wall-clock times of day such as opening hours and
// reservation slots. Values are exchanged as "HH:MM" strings; "HH:MM:SS" is
// accepted on input only when the seconds are zero, since storage keeps the
// minute.
package clock

import (
	"errors"
	"fmt"
	"time"
)

const (
	Layout            = "15:04"
	LayoutWithSeconds = "15:04:05"

	minutesPerHour = 60
)

var ErrInvalidClock = errors.New("invalid time of day, expected HH:MM")

// Parse returns minutes since midnight. A non-zero seconds part is rejected
// rather than truncated, so 22:00:30 never passes as 22:00.
func Parse(value string) (int, error) {
	for _, layout := range []string{Layout, LayoutWithSeconds} {
		parsed, err := time.Parse(layout, value)
		if err == nil && parsed.Second() == 0 {
			return parsed.Hour()*minutesPerHour + parsed.Minute(), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
}

// Normalize rewrites value into the canonical "HH:MM" form.
func Normalize(value string) (string, error) {
	minutes, err := Parse(value)
	if err != nil {
		return "", err
	}

	return Format(minutes), nil
}

func Format(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/minutesPerHour, minutes%minutesPerHour)
}

func Valid(value string) bool {
	_, err := Parse(value)

	return err == nil
}
