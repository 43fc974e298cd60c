package timestamp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format renders whole seconds as MM:SS, or HH:MM:SS once an hour is reached.
func Format(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "00:00"
	}
	total := int(seconds)
	hrs := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60
	if hrs > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hrs, mins, secs)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs)
}

// Parse accepts MM:SS and HH:MM:SS.
func Parse(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q: want MM:SS or HH:MM:SS", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		if !isDecimal(p) {
			return 0, fmt.Errorf("timestamp %q: component %q is not a plain number", s, p)
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, fmt.Errorf("timestamp %q: %w", s, err)
		}
		vals[i] = v
	}
	if len(vals) == 2 {
		if vals[1] >= 60 {
			return 0, fmt.Errorf("timestamp %q: seconds must be below 60", s)
		}
		return vals[0]*60 + vals[1], nil
	}
	if vals[1] >= 60 || vals[2] >= 60 {
		return 0, fmt.Errorf("timestamp %q: minutes and seconds must be below 60", s)
	}
	return vals[0]*3600 + vals[1]*60 + vals[2], nil
}

// isDecimal accepts digits with at most one dot; signs and exponents are out.
func isDecimal(p string) bool {
	digits, dots := 0, 0
	for _, r := range p {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// Seconds prints a duration in seconds with the shortest exact decimal form,
// always keeping a fractional part: 2.5, 3.0, 2.2399999999999998.
func Seconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
