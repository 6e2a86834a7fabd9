// Package ordering defines the canonical total order over trade facts:
// ascending slot, tie-broken by lexicographic signature compare. Every
// "happened before" question in detection goes through this order.
package ordering

import (
	"sort"

	"solana-sandwich-lab/internal/domain"
)

// Compare returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func Compare(a, b *domain.TradeFact) int {
	if a.Slot != b.Slot {
		if a.Slot < b.Slot {
			return -1
		}
		return 1
	}
	if a.Signature != b.Signature {
		if a.Signature < b.Signature {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether a executed strictly before b.
func Before(a, b *domain.TradeFact) bool {
	return Compare(a, b) < 0
}

// After reports whether a executed strictly after b.
func After(a, b *domain.TradeFact) bool {
	return Compare(a, b) > 0
}

// Sort orders trades by (slot ASC, signature ASC) in place.
func Sort(trades []*domain.TradeFact) {
	sort.Slice(trades, func(i, j int) bool {
		return Compare(trades[i], trades[j]) < 0
	})
}
