package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const keyJoin = "-"

// CombinationKey builds the canonical key for one full term assignment,
// traversing the selection's attribute order. Reordering attributes
// changes every key, which is why an attribute-set change forces a full
// regeneration.
func CombinationKey(order []int64, assignment map[int64]int64) string {
	var b strings.Builder
	for i, attributeID := range order {
		if i > 0 {
			b.WriteString(keyJoin)
		}
		b.WriteString(strconv.FormatInt(attributeID, 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(assignment[attributeID], 10))
	}
	return b.String()
}

// ParseCombinationKey splits a stored key back into attribute → term
// pairs in key order.
func ParseCombinationKey(key string) ([]AttributeTerms, error) {
	if key == "" {
		return nil, nil
	}
	parts := strings.Split(key, keyJoin)
	out := make([]AttributeTerms, 0, len(parts))
	for _, part := range parts {
		attrRaw, termRaw, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid combination key segment %q", part)
		}
		attributeID, err := strconv.ParseInt(attrRaw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid attribute id in key segment %q", part)
		}
		termID, err := strconv.ParseInt(termRaw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid term id in key segment %q", part)
		}
		out = append(out, AttributeTerms{AttributeID: attributeID, TermIDs: []int64{termID}})
	}
	return out, nil
}

// CombinationCount returns the size of the Cartesian product, or
// ErrCombinationCap when it would exceed cap.
func (s Selection) CombinationCount(cap int) (int, error) {
	total := 1
	for _, id := range s.Order {
		n := len(s.Terms[id])
		if n == 0 {
			return 0, nil
		}
		total *= n
		if total > cap || total < 0 {
			return 0, fmt.Errorf("%w: product of term sets exceeds %d", ErrCombinationCap, cap)
		}
	}
	return total, nil
}

// Combinations expands the full Cartesian product of the selection as
// canonical keys. Iteration is odometer-style over an index vector, so
// stack depth is independent of attribute count; ordering is nested
// iteration with the first attribute outermost and is stable across
// calls. Zero attributes yield the single empty key.
func (s Selection) Combinations(cap int) ([]string, error) {
	total, err := s.CombinationCount(cap)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}
	if len(s.Order) == 0 {
		return []string{""}, nil
	}

	keys := make([]string, 0, total)
	idx := make([]int, len(s.Order))
	assignment := make(map[int64]int64, len(s.Order))
	for {
		for i, id := range s.Order {
			assignment[id] = s.Terms[id][idx[i]]
		}
		keys = append(keys, CombinationKey(s.Order, assignment))

		// Advance the rightmost digit; carry left when a term set
		// wraps around.
		i := len(idx) - 1
		for i >= 0 {
			idx[i]++
			if idx[i] < len(s.Terms[s.Order[i]]) {
				break
			}
			idx[i] = 0
			i--
		}
		if i < 0 {
			return keys, nil
		}
	}
}
