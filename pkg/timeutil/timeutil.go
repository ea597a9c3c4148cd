package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Precision selects how Format renders the seconds field.
type Precision int

const (
	// Millisecond renders M:SS.mmm (or H:MM:SS.mmm once past an hour).
	Millisecond Precision = iota
	// WholeSecond renders M:SS (or H:MM:SS once past an hour).
	WholeSecond
)

// Format formats seconds for display. Negative and NaN inputs render as zero.
// Millisecond precision rounds to the nearest millisecond; whole-second precision truncates.
func Format(seconds float64, precision Precision) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}

	if precision == Millisecond {
		totalMillis := int64(math.Round(seconds * 1000))
		hours := totalMillis / 3600000
		mins := (totalMillis % 3600000) / 60000
		secs := (totalMillis % 60000) / 1000
		millis := totalMillis % 1000
		if hours > 0 {
			return fmt.Sprintf("%d:%02d:%02d.%03d", hours, mins, secs, millis)
		}
		return fmt.Sprintf("%d:%02d.%03d", mins, secs, millis)
	}

	totalSeconds := int64(seconds)
	hours := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// FormatTime formats seconds as M:SS or H:MM:SS.
func FormatTime(seconds float64) string {
	return Format(seconds, WholeSecond)
}

// Parse converts a display string back to seconds.
// Segments are split on ':' from the right: seconds (may be fractional), minutes, hours.
// Missing segments count as zero. Any segment that is not a plain number, or more than
// three segments, yields NaN; callers must leave their prior value untouched in that case.
func Parse(text string) float64 {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) > 3 {
		return math.NaN()
	}

	total := 0.0
	multiplier := 1.0
	for i := len(parts) - 1; i >= 0; i-- {
		v, ok := parseSegment(parts[i])
		if !ok {
			return math.NaN()
		}
		total += v * multiplier
		multiplier *= 60
	}
	return total
}

// parseSegment accepts decimal numbers only; strconv would otherwise let "NaN", "Inf"
// and hex floats through.
func parseSegment(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseTimeToSeconds parses a time string in H:MM:SS(.mmm), M:SS(.mmm), or raw seconds format.
func ParseTimeToSeconds(timeStr string) (float64, error) {
	v := Parse(timeStr)
	if math.IsNaN(v) {
		return 0, fmt.Errorf("expected H:MM:SS, M:SS, or seconds, got '%s'", timeStr)
	}
	return v, nil
}
