package multitoken

import "github.com/holiman/uint256"

// Snapshot is a deep copy of the ledger's observable state: nonzero
// balances per id per account, and total supplies per id. Snapshots back
// state commitments, conservation checks, and batch-atomicity tests.
type Snapshot struct {
	Balances map[TokenID]map[Address]*uint256.Int
	Supplies map[TokenID]*uint256.Int
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Balances: make(map[TokenID]map[Address]*uint256.Int),
		Supplies: make(map[TokenID]*uint256.Int),
	}
}

// Clone deep-copies the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	clone := NewSnapshot()
	for id, accounts := range s.Balances {
		dst := make(map[Address]*uint256.Int, len(accounts))
		for account, bal := range accounts {
			dst[account] = cloneAmount(bal)
		}
		clone.Balances[id] = dst
	}
	for id, supply := range s.Supplies {
		clone.Supplies[id] = cloneAmount(supply)
	}
	return clone
}

// BalanceOf returns the recorded balance, zero when absent.
func (s *Snapshot) BalanceOf(id TokenID, account Address) *uint256.Int {
	return cloneAmount(s.Balances[id][account])
}

// SupplyOf returns the recorded total supply, zero when absent.
func (s *Snapshot) SupplyOf(id TokenID) *uint256.Int {
	return cloneAmount(s.Supplies[id])
}

// BalanceSum adds up every balance recorded for id.
func (s *Snapshot) BalanceSum(id TokenID) *uint256.Int {
	sum := new(uint256.Int)
	for _, bal := range s.Balances[id] {
		sum.Add(sum, bal)
	}
	return sum
}

// Conserved reports whether the balances of id sum to its total supply.
// Ids with zero supply hold trivially.
func (s *Snapshot) Conserved(id TokenID) bool {
	return s.BalanceSum(id).Eq(s.SupplyOf(id))
}

// Equal reports whether two snapshots record the same balances and
// supplies, ignoring explicit zero entries.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if !balancesEqual(s, other) || !balancesEqual(other, s) {
		return false
	}
	return suppliesEqual(s, other) && suppliesEqual(other, s)
}

func balancesEqual(a, b *Snapshot) bool {
	for id, accounts := range a.Balances {
		for account, bal := range accounts {
			if !bal.Eq(b.BalanceOf(id, account)) {
				return false
			}
		}
	}
	return true
}

func suppliesEqual(a, b *Snapshot) bool {
	for id, supply := range a.Supplies {
		if !supply.Eq(b.SupplyOf(id)) {
			return false
		}
	}
	return true
}
