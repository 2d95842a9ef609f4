// Package multitoken implements a multi-asset fungible-token ledger: one
// engine tracks balances and spending authorizations for many independent
// token kinds within a single namespace, and exposes batched transfer and
// approval operations that apply atomically.
//
// The package is split along its moving parts:
//   - Registry: which token ids exist and their metadata
//   - Ledger: per-id, per-account balances
//   - AuthStore: per-id allowances and the global authorization flag
//   - Engine: the operation surface, orchestrating the above and emitting
//     audit events
//
// Amounts are 256-bit unsigned integers (holiman/uint256) and all credit
// arithmetic is checked: an addition that would wrap fails with ErrOverflow.
// Caller identity is an explicit parameter on every operation; nothing is
// read from ambient context.
package multitoken

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// TokenID identifies one fungible-asset kind within the shared ledger.
// It has no intrinsic structure; it is only a map key.
type TokenID uint64

// Address identifies a balance or allowance holder. The zero value is the
// null account: it can never hold a balance, send, receive, own, or spend.
type Address [20]byte

// ZeroAddress is the null account.
var ZeroAddress Address

// IsZero reports whether a is the null account.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String formats the address as 0x-prefixed lowercase hex.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ParseAddress parses a 0x-prefixed or bare 40-digit hex address.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("multitoken: invalid address %q: %w", s, err)
	}
	if len(b) != len(a) {
		return a, fmt.Errorf("multitoken: invalid address length %d, want %d", len(b), len(a))
	}
	copy(a[:], b)
	return a, nil
}

// AssetInfo holds the metadata stored once per token id.
type AssetInfo struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *uint256.Int
}

// InUse reports whether the asset counts as in use: a token id is in use
// iff its total supply is nonzero.
func (info AssetInfo) InUse() bool {
	return info.TotalSupply != nil && !info.TotalSupply.IsZero()
}

// clone returns a deep copy so callers cannot alias stored supply values.
func (info AssetInfo) clone() AssetInfo {
	out := info
	out.TotalSupply = cloneAmount(info.TotalSupply)
	return out
}

// cloneAmount copies an amount, normalizing nil to zero.
func cloneAmount(v *uint256.Int) *uint256.Int {
	out := new(uint256.Int)
	if v != nil {
		out.Set(v)
	}
	return out
}
