package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeSlice[T any](dst *[]T, v []T) {
	if v != nil {
		*dst = v
	}
}

func defaultString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func envString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envInt(dst *int, name string) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(dst *float64, name string) {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(dst *bool, name string) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// envList reads a comma-separated list, dropping blank elements.
func envList(dst *[]string, name string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// validateDurations checks fields in name order so the first error is stable.
func validateDurations(fields map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		d, err := time.ParseDuration(fields[name])
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid %s: negative duration", name)
		}
	}
	return nil
}
