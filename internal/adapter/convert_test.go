package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDurationString(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"01:00:00", 3600},
		{"00:01:00", 60},
		{"00:00:01", 1},
		{"01:00", 60},
		{"00:01", 1},
		{"00:00", 0},
	}
	for _, tt := range tests {
		got, ok := ParseDurationString(tt.in)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseMinutesSuffix(t *testing.T) {
	got, ok := ParseMinutesSuffix("120分")
	assert.True(t, ok)
	assert.Equal(t, int64(7200), got)

	got, ok = ParseMinutesSuffix("90分鐘")
	assert.True(t, ok)
	assert.Equal(t, int64(5400), got)
}

func TestParseReleaseDate(t *testing.T) {
	_, ok := ParseReleaseDate("2025-01-01")
	assert.True(t, ok)

	_, ok = ParseReleaseDate("2025/1/1")
	assert.True(t, ok)

	_, ok = ParseReleaseDate("not-a-date")
	assert.False(t, ok)
}
