package codenorm

import (
	"testing"

	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGetMovieCode(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{"standard format", "SNIS-829.mp4", "SNIS-829"},
		{"fc2 with ppv dash form", "FC2-PPV-1234567.mp4", "FC2-1234567"},
		{"fc2 without ppv", "FC2-1234567.mp4", "FC2-1234567"},
		{"fc2 underscore form", "FC2_PPV_1234567.mp4", "FC2-1234567"},
		{"heyzo underscore form", "HEYZO_1234.mp4", "HEYZO-1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetMovieCode(tt.filename)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, string(code))
		})
	}
}

func TestGetMovieCode_MDRuleStopsChainOnMDVR(t *testing.T) {
	// A filename matching MD_RE but containing "MDVR" must be treated as
	// unhandled by this rule and must NOT fall through to later rules
	// (oumeiRE, xxxAvRE, mkyRE, ...) that might also match it — earlier
	// rules win even when a later rule would also match.
	code, ok := GetMovieCode("MDVR-1234.mp4")
	assert.False(t, ok)
	assert.Empty(t, code)
}

func TestGetMovieCode_NoMatch(t *testing.T) {
	// The fallback branch strips bracket characters and always returns a
	// cleaned string rather than signalling absence, matching the original
	// extract_movie_code's final else arm.
	code, ok := GetMovieCode("[random-notes].txt")
	assert.True(t, ok)
	assert.NotEmpty(t, code)
}

func TestIsUncensored(t *testing.T) {
	assert.True(t, IsUncensored(models.Code("HEYZO-1234")))
	assert.True(t, IsUncensored(models.Code("n1234")))
	assert.False(t, IsUncensored(models.Code("SNIS-829")))
}

func TestCodePrefix(t *testing.T) {
	prefix, ok := CodePrefix(models.Code("FC2-1234567"))
	assert.True(t, ok)
	assert.Equal(t, "FC2", prefix)

	prefix, ok = CodePrefix(models.Code("SNIS-829"))
	assert.True(t, ok)
	assert.Equal(t, "SNIS", prefix)
}
