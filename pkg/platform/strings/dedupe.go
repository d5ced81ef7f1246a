// Package strings holds list-cleaning helpers for configuration values.
package strings

import (
	"strings"
)

// Dedupe removes repeated values, keeping the first occurrence of each.
//
//	Dedupe([]int{40, 56, 40})  // []int{40, 56}
func Dedupe[T comparable](values []T) []T {
	if len(values) == 0 {
		return values
	}
	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// DedupeAndTrim trims each element, drops empty ones and removes
// duplicates. Order is preserved.
func DedupeAndTrim(values []string) []string {
	return clean(values, strings.TrimSpace)
}

// DedupeAndTrimLower is DedupeAndTrim with case folded to lower.
//
//	DedupeAndTrimLower([]string{" LCG ", "xorshift", "lcg"})  // []string{"lcg", "xorshift"}
func DedupeAndTrimLower(values []string) []string {
	return clean(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func clean(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = normalize(v); v != "" {
			out = append(out, v)
		}
	}
	return Dedupe(out)
}
