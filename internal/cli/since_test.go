package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"empty", "", time.Time{}},
		{"duration", "90m", now.Add(-90 * time.Minute)},
		{"negative duration", "-2h", now.Add(-2 * time.Hour)},
		{"date", "2026-10-01", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2026-10-16T08:30:00Z", time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSince(tt.raw, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParseSinceNaturalLanguage(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("2 hours ago", now)
	require.NoError(t, err)
	assert.True(t, got.Before(now))
	assert.True(t, got.After(now.Add(-3*time.Hour)))
}

func TestParseSinceGarbage(t *testing.T) {
	_, err := parseSince("zzzz", time.Now())
	assert.Error(t, err)
}
