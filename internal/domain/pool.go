package domain

import "time"

// PoolMember is one ship's position in a pool: its adjusted balance
// before allocation and its balance after.
type PoolMember struct {
	ShipID   string  `json:"shipId"`
	CBBefore float64 `json:"cbBefore"`
	CBAfter  float64 `json:"cbAfter"`
}

// Pool groups ships whose adjusted balances were redistributed for one
// reporting year. Pools are immutable once created.
//
// A valid pool satisfies all of:
//  1. sum(cbAfter) >= 0
//  2. no deficit member exits worse than it entered
//  3. no surplus member exits negative
//  4. at least one member
type Pool struct {
	ID        int64        `json:"id,omitempty"`
	Year      int          `json:"year"`
	Members   []PoolMember `json:"members"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NewPool validates and constructs a pool, checking every pool invariant.
func NewPool(year int, members []PoolMember, createdAt time.Time) (*Pool, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, InvalidInputf("pool must have at least one member")
	}
	for _, m := range members {
		if err := ValidateShipID(m.ShipID); err != nil {
			return nil, InvalidInputf("pool member ship ID is required")
		}
	}

	p := &Pool{Year: year, Members: members, CreatedAt: createdAt}

	if total := p.TotalCBAfter(); total < 0 {
		return nil, RuleViolationf("pool total CB after allocation must be non-negative, got %v", total)
	}
	for _, m := range members {
		if m.CBBefore < 0 && m.CBAfter < m.CBBefore {
			return nil, RuleViolationf("deficit ship %s cannot exit with worse balance (%v -> %v)", m.ShipID, m.CBBefore, m.CBAfter)
		}
		if m.CBBefore > 0 && m.CBAfter < 0 {
			return nil, RuleViolationf("surplus ship %s cannot exit with negative balance (%v -> %v)", m.ShipID, m.CBBefore, m.CBAfter)
		}
	}

	return p, nil
}

// TotalCBBefore sums members' balances before allocation.
func (p *Pool) TotalCBBefore() float64 {
	var total float64
	for _, m := range p.Members {
		total += m.CBBefore
	}
	return total
}

// TotalCBAfter sums members' balances after allocation. The allocation
// conserves the sum, so this equals TotalCBBefore for any pool the
// allocator produced.
func (p *Pool) TotalCBAfter() float64 {
	var total float64
	for _, m := range p.Members {
		total += m.CBAfter
	}
	return total
}

// MemberCount returns the number of pool members.
func (p *Pool) MemberCount() int {
	return len(p.Members)
}
