package rollup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hollowoak/farmhand/internal/apperr"
)

// FormatEstimate renders minutes as a human string: 150 → "2h 30m",
// 120 → "2h", 45 → "45m", 0 → "0m". ParseEstimate round-trips it.
func FormatEstimate(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	hours := minutes / 60
	rest := minutes % 60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, rest)
	}
}

// ParseEstimate parses an estimate display string back into minutes.
// Accepts "2h 30m", "2h", "45m", "0m" and bare minutes like "90".
func ParseEstimate(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, apperr.Validation("estimate", "empty estimate string")
	}

	// Bare integer means minutes.
	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 0 {
			return 0, apperr.Validation("estimate", "negative estimate %q", s)
		}
		return n, nil
	}

	total := 0
	for _, part := range strings.Fields(trimmed) {
		unit := part[len(part)-1]
		n, err := strconv.Atoi(part[:len(part)-1])
		if err != nil || n < 0 {
			return 0, apperr.Validation("estimate", "bad estimate component %q in %q", part, s)
		}
		switch unit {
		case 'h':
			total += n * 60
		case 'm':
			total += n
		default:
			return 0, apperr.Validation("estimate", "unknown estimate unit %q in %q", string(unit), s)
		}
	}
	return total, nil
}
