package multitoken

import (
	"fmt"

	"github.com/holiman/uint256"
)

// allowanceKey addresses one remaining-allowance cell. The reference model
// nests maps id→owner→spender; a composite key keeps lookup and cleanup
// trivial.
type allowanceKey struct {
	ID      TokenID
	Owner   Address
	Spender Address
}

// pairKey addresses the global authorization flag for an owner/spender pair.
type pairKey struct {
	Owner   Address
	Spender Address
}

// AuthStore owns the per-id allowance table plus the per-pair global flag
// that authorizes unlimited spending across all ids without consulting or
// mutating the allowance table.
//
// Like Ledger, it is unsynchronized; Engine serializes access.
type AuthStore struct {
	registry   *Registry
	allowances map[allowanceKey]*uint256.Int
	global     map[pairKey]bool
}

// NewAuthStore creates an empty authorization store gated by the registry.
func NewAuthStore(registry *Registry) *AuthStore {
	return &AuthStore{
		registry:   registry,
		allowances: make(map[allowanceKey]*uint256.Int),
		global:     make(map[pairKey]bool),
	}
}

// Allowance returns the remaining amount spender may move out of owner's
// balance of id, zero by default. The id must be in use.
func (a *AuthStore) Allowance(id TokenID, owner, spender Address) (*uint256.Int, error) {
	if err := a.registry.AssertInUse(id); err != nil {
		return nil, err
	}
	return cloneAmount(a.allowances[allowanceKey{id, owner, spender}]), nil
}

// Approve sets the allowance to amount. This is an absolute set, not an
// increment. The id must be in use and neither party may be null.
func (a *AuthStore) Approve(id TokenID, owner, spender Address, amount *uint256.Int) error {
	if err := a.registry.AssertInUse(id); err != nil {
		return err
	}
	if owner.IsZero() {
		return fmt.Errorf("%w: owner", ErrZeroAddress)
	}
	if spender.IsZero() {
		return fmt.Errorf("%w: spender", ErrZeroAddress)
	}
	a.setAllowance(allowanceKey{id, owner, spender}, cloneAmount(amount))
	return nil
}

// SetGlobal sets or clears the global flag for (owner, spender). It is
// independent of any token id and has no existence precondition.
func (a *AuthStore) SetGlobal(owner, spender Address, status bool) {
	key := pairKey{owner, spender}
	if status {
		a.global[key] = true
	} else {
		delete(a.global, key)
	}
}

// IsGloballyAuthorized reports whether spender holds the global flag for
// owner.
func (a *AuthStore) IsGloballyAuthorized(owner, spender Address) bool {
	return a.global[pairKey{owner, spender}]
}

// setAllowance writes one cell, dropping zero entries from the table.
func (a *AuthStore) setAllowance(key allowanceKey, amount *uint256.Int) {
	if amount.IsZero() {
		delete(a.allowances, key)
		return
	}
	a.allowances[key] = amount
}
