// Package proof derives cryptographic commitments from ledger snapshots
// and produces Groth16 proofs that a token id's balances conserve its
// declared total supply. Commitments use MiMC over BN254, so the same
// digest is reproducible inside a circuit.
package proof

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-multitoken/multitoken"
)

// StateCommitment hashes the full ledger state: every id in ascending
// order, its supply, and its nonzero balances in address order. Two
// snapshots commit equal iff they record the same state, so the digest
// serves as an audit checkpoint.
//
// Supplies and balances are 256-bit and may exceed the BN254 scalar
// field, so each is absorbed as two 128-bit halves.
func StateCommitment(snap *multitoken.Snapshot) []byte {
	h := mimc.NewMiMC()
	for _, id := range sortedIDs(snap) {
		writeUint64(h, uint64(id))
		writeAmount(h, snap.SupplyOf(id))
		accounts := snap.Balances[id]
		for _, account := range sortedAccounts(accounts) {
			bal := accounts[account]
			if bal.IsZero() {
				continue
			}
			writeAddress(h, account)
			writeAmount(h, bal)
		}
	}
	return h.Sum(nil)
}

// CommitmentHex formats a commitment as 0x-prefixed hex.
func CommitmentHex(digest []byte) string {
	return "0x" + hex.EncodeToString(digest)
}

// balancesDigest hashes the balances of one id, sorted by address and
// zero-padded to size, each balance absorbed as a single field element —
// the layout ConservationCircuit reproduces. Balances must fit the BN254
// scalar field.
func balancesDigest(snap *multitoken.Snapshot, id multitoken.TokenID, size int) ([]byte, []*uint256.Int, error) {
	accounts := snap.Balances[id]
	ordered := sortedAccounts(accounts)
	nonzero := make([]*uint256.Int, 0, len(ordered))
	for _, account := range ordered {
		if bal := accounts[account]; !bal.IsZero() {
			nonzero = append(nonzero, bal)
		}
	}
	if len(nonzero) > size {
		return nil, nil, fmt.Errorf("proof: %d balances exceed circuit size %d", len(nonzero), size)
	}

	balances := make([]*uint256.Int, size)
	h := mimc.NewMiMC()
	for i := range balances {
		bal := new(uint256.Int)
		if i < len(nonzero) {
			bal.Set(nonzero[i])
		}
		balances[i] = bal

		var e fr.Element
		if err := setElement(&e, bal); err != nil {
			return nil, nil, err
		}
		eb := e.Bytes()
		h.Write(eb[:])
	}
	return h.Sum(nil), balances, nil
}

func setElement(e *fr.Element, v *uint256.Int) error {
	b := v.ToBig()
	if b.Cmp(fr.Modulus()) >= 0 {
		return fmt.Errorf("proof: amount %s exceeds the scalar field", v.Dec())
	}
	e.SetBigInt(b)
	return nil
}

func writeUint64(h hash.Hash, v uint64) {
	var e fr.Element
	e.SetUint64(v)
	eb := e.Bytes()
	h.Write(eb[:])
}

func writeAddress(h hash.Hash, a multitoken.Address) {
	var buf [32]byte
	copy(buf[12:], a[:])
	h.Write(buf[:])
}

// writeAmount absorbs a 256-bit value as two 128-bit halves, each of
// which always fits the field.
func writeAmount(h hash.Hash, v *uint256.Int) {
	hi := new(uint256.Int).Rsh(v, 128)
	lo := new(uint256.Int).And(v, maxUint128)
	for _, half := range []*uint256.Int{hi, lo} {
		var e fr.Element
		e.SetBytes(half.Bytes())
		eb := e.Bytes()
		h.Write(eb[:])
	}
}

var maxUint128 = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

func sortedIDs(snap *multitoken.Snapshot) []multitoken.TokenID {
	seen := make(map[multitoken.TokenID]bool)
	var ids []multitoken.TokenID
	for id := range snap.Supplies {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for id := range snap.Balances {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedAccounts(accounts map[multitoken.Address]*uint256.Int) []multitoken.Address {
	out := make([]multitoken.Address, 0, len(accounts))
	for account := range accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}
