package adapter

import (
	"strconv"
	"strings"
	"time"
)

// ParseDurationString converts "HH:MM:SS" or "MM:SS" to seconds, weighting
// components (3600, 60, 1) left to right. Unparseable components are
// treated as zero, matching the original converter's unwrap_or(0).
func ParseDurationString(text string) (int64, bool) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	toInt := func(s string) int64 {
		n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n
	}
	switch len(parts) {
	case 2:
		return toInt(parts[0])*60 + toInt(parts[1]), true
	case 3:
		return toInt(parts[0])*3600 + toInt(parts[1])*60 + toInt(parts[2]), true
	default:
		return 0, false
	}
}

// ParseMinutesSuffix converts a "NNN分" or "NNN分鐘" string (minutes) to
// seconds, for adapters (officials, JavBus) that report duration this way.
func ParseMinutesSuffix(text string) (int64, bool) {
	digits := strings.TrimSpace(text)
	digits = strings.TrimSuffix(digits, "分鐘")
	digits = strings.TrimSuffix(digits, "分")
	digits = strings.TrimSpace(digits)
	minutes, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return minutes * 60, true
}

// dateLayouts lists the date-only formats adapters are known to emit,
// tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/1/2",
	"2006/01/02",
	"2006年01月02日",
	"2006年1月2日",
}

// ParseReleaseDate converts a date-only string to a Unix epoch at local
// midnight, trying each known layout in turn.
func ParseReleaseDate(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}
