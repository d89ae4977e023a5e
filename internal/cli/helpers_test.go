package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"7d", 7 * 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"30m", 30 * time.Minute},
		{"90s", 90 * time.Second},
	}
	for _, tc := range cases {
		got, err := parseDuration(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, in := range []string{"", "d", "7", "7y", "abc", "1.5d"} {
		_, err := parseDuration(in)
		assert.Error(t, err, in)
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "00:00:00", formatTime(0))
	assert.Equal(t, "00:00:05", formatTime(5000))
	assert.Equal(t, "00:01:30", formatTime(90_000))
	assert.Equal(t, "02:05:00", formatTime(7_500_000))
	assert.Equal(t, "27:46:40", formatTime(100_000_000))
}

func TestFormatDurationHuman(t *testing.T) {
	assert.Equal(t, "30 days", formatDurationHuman(30*24*time.Hour))
	assert.Equal(t, "1 day", formatDurationHuman(24*time.Hour))
	assert.Equal(t, "6 hours", formatDurationHuman(6*time.Hour))
	assert.Equal(t, "1 hour", formatDurationHuman(time.Hour))
}

func TestFormatDomain(t *testing.T) {
	assert.Equal(t, "github.com", formatDomain("www.github.com"))
	assert.Equal(t, "github.com", formatDomain("github.com"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}
