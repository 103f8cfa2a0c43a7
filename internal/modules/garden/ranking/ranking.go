// Package ranking orders recommendation candidates by their success rate.
package ranking

import (
	"math"
	"sort"
	"strings"
)

// MaxResults caps every ranked batch.
const MaxResults = 5

// Unranked is the value assigned to success rates without a leading integer.
const Unranked = math.MinInt

// SuccessRateValue parses the leading integer of a free-text success rate:
// "85%" -> 85, " 70 percent" -> 70, "-5" -> -5. Anything else is Unranked.
func SuccessRateValue(text string) int {
	s := strings.TrimSpace(text)
	neg := false
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if n < math.MaxInt32 {
			n = n*10 + int(s[digits]-'0')
		}
		digits++
	}
	if digits == 0 {
		return Unranked
	}
	if neg {
		return -n
	}
	return n
}

// Rank returns a new slice sorted by descending success rate, keeping input order
// among equal rates, truncated to limit. A limit outside 1..MaxResults means
// MaxResults.
func Rank[T any](items []T, rate func(T) string, limit int) []T {
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}
	type keyed struct {
		item T
		key  int
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		ks[i] = keyed{item: it, key: SuccessRateValue(rate(it))}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key > ks[j].key })

	if len(ks) > limit {
		ks = ks[:limit]
	}
	out := make([]T, len(ks))
	for i := range ks {
		out[i] = ks[i].item
	}
	return out
}
