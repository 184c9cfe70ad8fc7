package domain

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseBreakpoints parses a delimited quantity-breakpoint string.
// Delimiters are '|', ',', ';' or whitespace, arbitrarily mixed.
// Non-positive and duplicate values are dropped; input order is kept.
func ParseBreakpoints(raw string) []int {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '|' || r == ',' || r == ';' || unicode.IsSpace(r)
	})

	seen := make(map[int]struct{}, len(fields))
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n <= 0 {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// FormatBreakpoints renders breakpoints in the canonical stored form.
func FormatBreakpoints(breakpoints []int) string {
	parts := make([]string, 0, len(breakpoints))
	for _, n := range breakpoints {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, "|")
}
