// Package duration converts between whole seconds and the H:MM:SS / M:SS / SS
// strings shown on the timer and accepted by the edit prompt.
package duration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrParse is wrapped by every StringToSeconds failure.
var ErrParse = errors.New("invalid duration")

// SecondsToString formats signed seconds. Hours are shown only when nonzero,
// in which case minutes are padded to two digits.
func SecondsToString(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h != 0 {
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%d:%02d", sign, m, s)
}

// StringToSeconds parses "SS", "M:SS" or "H:MM:SS". A leading "-" negates the
// whole value.
func StringToSeconds(s string) (int64, error) {
	raw := strings.TrimSpace(s)
	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	parts := strings.Split(raw, ":")
	if raw == "" || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q: want 1 to 3 colon-separated parts", ErrParse, s)
	}

	var total int64
	for _, p := range parts {
		if !isDigits(p) {
			return 0, fmt.Errorf("%w: %q: part %q is not a number", ErrParse, s, p)
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
		}
		if total > (math.MaxInt64-n)/60 {
			return 0, fmt.Errorf("%w: %q: value out of range", ErrParse, s)
		}
		total = total*60 + n
	}
	if negative {
		total = -total
	}
	return total, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
