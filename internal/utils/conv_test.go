package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	cases := map[string]time.Time{
		"2026-05-01T10:30:00Z":      time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		"2026-05-01T10:30:00.5Z":    time.Date(2026, 5, 1, 10, 30, 0, 500000000, time.UTC),
		"2026-05-01T12:30:00+02:00": time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		"2026-05-01T10:30:00":       time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		"2026-05-01T10:30":          time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		" 2026-05-01 ":              time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		"May 1, 2026":               time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %v want %v", in, got, want)
	}

	for _, bad := range []string{"", "tomorrow", "2026-13-01", "01/05/2026"} {
		_, err := ParseTime(bad)
		assert.ErrorIs(t, err, ErrBadTime, bad)
	}
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("15")
	assert.True(t, ok)
	assert.Equal(t, uint(15), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, ok := ParseID(bad)
		assert.False(t, ok, bad)
	}
}
