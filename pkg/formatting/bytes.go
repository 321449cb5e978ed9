// Package formatting converts byte sizes between counts and the
// human-readable strings used in configuration and log output.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Units are base-1024; "MB" and "MiB" are the same multiplier.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

var bytesPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]*)$`)

// FormatBytes renders n with the largest unit that keeps the value at or
// above one. Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	size := float64(n)
	i := 0
	for math.Abs(size) >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	if i == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes parses sizes such as "5MB", "512 kb", "1.5GiB" or a bare byte
// count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	m := bytesPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	exp, err := unitExponent(m[2])
	if err != nil {
		return 0, err
	}

	bytes := value * math.Pow(1024, float64(exp))
	if bytes > math.MaxInt64 {
		return 0, fmt.Errorf("byte size %q overflows", s)
	}
	return int64(bytes), nil
}

func unitExponent(unit string) (int, error) {
	u := strings.ToUpper(unit)
	if u == "" {
		return 0, nil
	}
	if len(u) == 3 && u[1] == 'I' {
		u = u[:1] + u[2:]
	}
	if len(u) == 1 && u != "B" {
		u += "B"
	}
	for i, name := range units {
		if name == u {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit %q", unit)
}
