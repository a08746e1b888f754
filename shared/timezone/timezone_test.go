package timezone_test

import (
	"restobook/shared/timezone"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		zone string
		want string
	}{
		{name: "iana name", zone: "Asia/Jakarta", want: "Asia/Jakarta"},
		{name: "empty", zone: "", want: "UTC"},
		{name: "unknown", zone: "Mars/Olympus", want: "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timezone.Load(tt.zone).String())
		})
	}
}

func TestNow(t *testing.T) {
	now := timezone.Now()

	assert.False(t, now.IsZero())
	assert.Equal(t, timezone.Location(), now.Location())
}

func TestFormat(t *testing.T) {
	assert.Empty(t, timezone.Format(time.Time{}, time.RFC3339))

	instant := time.Date(2026, 11, 2, 12, 30, 0, 0, time.UTC)
	formatted := timezone.Format(instant, time.RFC3339)

	parsed, err := time.Parse(time.RFC3339, formatted)
	assert.NoError(t, err)
	assert.True(t, instant.Equal(parsed))
}
