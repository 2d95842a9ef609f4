package proof

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-multitoken/multitoken"
)

func addr(b byte) multitoken.Address {
	var a multitoken.Address
	a[0] = b
	return a
}

// buildSnapshot runs a short session and returns the resulting snapshot.
func buildSnapshot(t *testing.T) *multitoken.Snapshot {
	t.Helper()
	alice, bob := addr(1), addr(2)
	e := multitoken.NewEngine(nil)
	if err := e.Create(alice, 1, multitoken.AssetInfo{Name: "Gold", Symbol: "GLD"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := e.Mint(alice, 1, alice, uint256.NewInt(100)); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := e.Transfer(alice, 1, bob, uint256.NewInt(30)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	return e.Snapshot()
}

func TestStateCommitment_Deterministic(t *testing.T) {
	snap := buildSnapshot(t)

	a := StateCommitment(snap)
	b := StateCommitment(snap.Clone())
	if !bytes.Equal(a, b) {
		t.Error("equal snapshots commit differently")
	}
	if len(a) == 0 {
		t.Error("empty digest")
	}
}

func TestStateCommitment_SensitiveToBalances(t *testing.T) {
	snap := buildSnapshot(t)
	before := StateCommitment(snap)

	changed := snap.Clone()
	changed.Balances[1][addr(2)] = uint256.NewInt(31)
	if bytes.Equal(before, StateCommitment(changed)) {
		t.Error("balance change did not move the commitment")
	}
}

func TestStateCommitment_SensitiveToSupply(t *testing.T) {
	snap := buildSnapshot(t)
	before := StateCommitment(snap)

	changed := snap.Clone()
	changed.Supplies[1] = uint256.NewInt(101)
	if bytes.Equal(before, StateCommitment(changed)) {
		t.Error("supply change did not move the commitment")
	}
}

func TestStateCommitment_IgnoresZeroBalances(t *testing.T) {
	snap := buildSnapshot(t)
	before := StateCommitment(snap)

	padded := snap.Clone()
	padded.Balances[1][addr(9)] = new(uint256.Int)
	if !bytes.Equal(before, StateCommitment(padded)) {
		t.Error("a zero balance entry moved the commitment")
	}
}

func TestStateCommitment_LargeAmounts(t *testing.T) {
	// Values beyond the BN254 scalar field must still commit (absorbed as
	// two 128-bit halves).
	snap := multitoken.NewSnapshot()
	max := new(uint256.Int).SetAllOne()
	snap.Supplies[1] = max.Clone()
	snap.Balances[1] = map[multitoken.Address]*uint256.Int{addr(1): max.Clone()}

	digest := StateCommitment(snap)
	if len(digest) == 0 {
		t.Fatal("empty digest")
	}

	// The two halves must not collapse with a swapped encoding.
	swapped := multitoken.NewSnapshot()
	hi := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	swapped.Supplies[1] = hi
	swapped.Balances[1] = map[multitoken.Address]*uint256.Int{addr(1): uint256.NewInt(1)}

	other := multitoken.NewSnapshot()
	other.Supplies[1] = uint256.NewInt(1)
	other.Balances[1] = map[multitoken.Address]*uint256.Int{addr(1): hi.Clone()}

	if bytes.Equal(StateCommitment(swapped), StateCommitment(other)) {
		t.Error("high and low halves collide")
	}
}

func TestCommitmentHex(t *testing.T) {
	got := CommitmentHex([]byte{0xab, 0xcd})
	if got != "0xabcd" {
		t.Errorf("expected 0xabcd, got %q", got)
	}
}

func TestBalancesDigest_SizeOverflow(t *testing.T) {
	snap := buildSnapshot(t) // two nonzero holders of id 1

	_, _, err := balancesDigest(snap, 1, 1)
	if err == nil || !strings.Contains(err.Error(), "circuit size") {
		t.Errorf("expected a size error, got %v", err)
	}
}

func TestBalancesDigest_Padding(t *testing.T) {
	snap := buildSnapshot(t)

	d2, balances2, err := balancesDigest(snap, 1, 2)
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	if len(balances2) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(balances2))
	}

	d4, balances4, err := balancesDigest(snap, 1, 4)
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	if len(balances4) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(balances4))
	}
	for _, bal := range balances4[2:] {
		if !bal.IsZero() {
			t.Error("padding slot is nonzero")
		}
	}
	// Padding is part of the committed layout, so the digests differ.
	if bytes.Equal(d2, d4) {
		t.Error("digest independent of circuit size")
	}
}

func TestNewProver_InvalidSize(t *testing.T) {
	if _, err := NewProver(0); err == nil {
		t.Error("expected an error for size 0")
	}
}

// TestProver_ProveAndVerify exercises the full Groth16 pipeline on a tiny
// circuit. Setup dominates the runtime, so one prover serves all cases.
func TestProver_ProveAndVerify(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping zk setup in short mode")
	}
	prover, err := NewProver(2)
	if err != nil {
		t.Fatalf("prover setup failed: %v", err)
	}
	if prover.Size() != 2 {
		t.Errorf("expected size 2, got %d", prover.Size())
	}
	if prover.Constraints() == 0 {
		t.Error("compiled circuit has no constraints")
	}

	snap := buildSnapshot(t)
	proof, err := prover.Prove(snap, 1)
	if err != nil {
		t.Fatalf("prove failed: %v", err)
	}
	if proof.Supply.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("expected supply 100, got %s", proof.Supply)
	}
	if err := prover.Verify(proof); err != nil {
		t.Errorf("verify failed: %v", err)
	}

	t.Run("tampered supply fails", func(t *testing.T) {
		bad := *proof
		bad.Supply = big.NewInt(99)
		if err := prover.Verify(&bad); err == nil {
			t.Error("verification accepted a tampered supply")
		}
	})

	t.Run("non-conserving snapshot fails", func(t *testing.T) {
		broken := snap.Clone()
		broken.Supplies[1] = uint256.NewInt(101)
		if _, err := prover.Prove(broken, 1); err == nil {
			t.Error("proving accepted a non-conserving snapshot")
		}
	})
}
