// Package pooling redistributes compliance balances across ship pools.
package pooling

import (
	"sort"

	"github.com/varuna/varuna/internal/domain"
)

// Allocator runs the greedy surplus-to-deficit allocation. Pure and
// deterministic: identical inputs always produce identical allocations.
type Allocator struct{}

// NewAllocator creates a new pool allocator
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate redistributes surplus to deficits greedily. Members are
// processed in descending cbBefore order (stable, so input order breaks
// ties); each deficit draws from the largest remaining surpluses until
// it reaches zero or the surpluses run out. The total balance is
// conserved and members that start at exactly zero are never touched.
func (a *Allocator) Allocate(members []domain.PoolMember) []domain.PoolMember {
	ordered := make([]domain.PoolMember, len(members))
	copy(ordered, members)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CBBefore > ordered[j].CBBefore
	})

	for i := range ordered {
		ordered[i].CBAfter = ordered[i].CBBefore
	}

	var surpluses, deficits []*domain.PoolMember
	for i := range ordered {
		switch {
		case ordered[i].CBBefore > 0:
			surpluses = append(surpluses, &ordered[i])
		case ordered[i].CBBefore < 0:
			deficits = append(deficits, &ordered[i])
		}
	}

	for _, deficit := range deficits {
		for _, surplus := range surpluses {
			if deficit.CBAfter >= 0 {
				break
			}
			if surplus.CBAfter <= 0 {
				continue
			}

			transfer := surplus.CBAfter
			if need := -deficit.CBAfter; need < transfer {
				transfer = need
			}

			surplus.CBAfter -= transfer
			deficit.CBAfter += transfer
		}
	}

	return ordered
}
