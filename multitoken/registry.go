package multitoken

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Registry tracks which token ids exist and their metadata. It gates every
// other component: balance and allowance operations require the id to be
// in use (nonzero total supply).
type Registry struct {
	assets map[TokenID]AssetInfo
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{assets: make(map[TokenID]AssetInfo)}
}

// Create stores the metadata for a new token id. It fails with
// ErrAlreadyInUse when an asset is already recorded at id. Existence is
// judged the way the stored record exposes it: a non-empty name or symbol,
// or a nonzero total supply.
func (r *Registry) Create(id TokenID, info AssetInfo) error {
	if cur, ok := r.assets[id]; ok {
		if cur.Name != "" || cur.Symbol != "" || !cur.TotalSupply.IsZero() {
			return fmt.Errorf("%w: id %d", ErrAlreadyInUse, id)
		}
	}
	r.assets[id] = info.clone()
	return nil
}

// Info returns the stored metadata, or a zero-valued AssetInfo when the id
// was never created. Callers infer non-existence from a zero total supply;
// there is no explicit not-found error.
func (r *Registry) Info(id TokenID) AssetInfo {
	if info, ok := r.assets[id]; ok {
		return info.clone()
	}
	return AssetInfo{TotalSupply: cloneAmount(nil)}
}

// Created reports whether metadata has been stored at id, in use or not.
func (r *Registry) Created(id TokenID) bool {
	_, ok := r.assets[id]
	return ok
}

// InUse reports whether id has a nonzero total supply.
func (r *Registry) InUse(id TokenID) bool {
	return r.assets[id].InUse()
}

// AssertInUse fails with ErrNotInUse unless id is in use.
func (r *Registry) AssertInUse(id TokenID) error {
	if !r.InUse(id) {
		return fmt.Errorf("%w: id %d", ErrNotInUse, id)
	}
	return nil
}

// AssertInUseBatch fails with ErrNotInUse if any id is not in use.
func (r *Registry) AssertInUseBatch(ids []TokenID) error {
	for _, id := range ids {
		if err := r.AssertInUse(id); err != nil {
			return err
		}
	}
	return nil
}

// addSupply grows the recorded total supply with checked arithmetic.
// The registry entry must exist; Ledger.Mint guards that.
func (r *Registry) addSupply(id TokenID, amount *uint256.Int) error {
	info := r.assets[id]
	next, overflow := new(uint256.Int).AddOverflow(info.TotalSupply, amount)
	if overflow {
		return fmt.Errorf("%w: total supply of id %d", ErrOverflow, id)
	}
	info.TotalSupply = next
	r.assets[id] = info
	return nil
}
