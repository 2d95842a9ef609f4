package proof

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-multitoken/multitoken"
)

// Prover compiles the conservation circuit once and generates proofs for
// ledger snapshots. A prover is sized for a fixed number of balance slots;
// snapshots with more nonzero holders of the proven id need a larger one.
type Prover struct {
	size  int
	cs    constraint.ConstraintSystem
	pk    groth16.ProvingKey
	vk    groth16.VerifyingKey
	curve ecc.ID
}

// ConservationProof is a generated proof with its public inputs.
type ConservationProof struct {
	ID         multitoken.TokenID
	Supply     *big.Int
	Commitment *big.Int
	proof      groth16.Proof
}

// NewProver compiles and sets up a conservation circuit with size balance
// slots on BN254 (Groth16).
func NewProver(size int) (*Prover, error) {
	if size <= 0 {
		return nil, fmt.Errorf("proof: circuit size must be positive, got %d", size)
	}
	circuit := &ConservationCircuit{Balances: make([]frontend.Variable, size)}

	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("proof: circuit compilation failed: %w", err)
	}
	// Per-instance setup; a production deployment would use a ceremony.
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("proof: setup failed: %w", err)
	}

	return &Prover{size: size, cs: cs, pk: pk, vk: vk, curve: ecc.BN254}, nil
}

// Size returns the number of balance slots the circuit carries.
func (p *Prover) Size() int {
	return p.size
}

// Constraints returns the compiled constraint count.
func (p *Prover) Constraints() int {
	return p.cs.GetNbConstraints()
}

// Prove generates a conservation proof for one token id of a snapshot.
// It fails when the snapshot does not actually conserve (the constraint
// system rejects the witness), when a balance or the supply exceeds the
// scalar field, or when the id has more nonzero holders than the circuit
// has slots.
func (p *Prover) Prove(snap *multitoken.Snapshot, id multitoken.TokenID) (*ConservationProof, error) {
	digest, balances, err := balancesDigest(snap, id, p.size)
	if err != nil {
		return nil, err
	}
	supply := snap.SupplyOf(id)
	if supply.ToBig().Cmp(p.curve.ScalarField()) >= 0 {
		return nil, fmt.Errorf("proof: supply %s exceeds the scalar field", supply.Dec())
	}

	assignment := p.assignment(balances, supply.ToBig(), new(big.Int).SetBytes(digest))
	witness, err := frontend.NewWitness(assignment, p.curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("proof: witness creation failed: %w", err)
	}

	proved, err := groth16.Prove(p.cs, p.pk, witness)
	if err != nil {
		return nil, fmt.Errorf("proof: proving failed: %w", err)
	}

	return &ConservationProof{
		ID:         id,
		Supply:     supply.ToBig(),
		Commitment: new(big.Int).SetBytes(digest),
		proof:      proved,
	}, nil
}

// Verify checks a proof against its public inputs.
func (p *Prover) Verify(cp *ConservationProof) error {
	assignment := p.assignment(nil, cp.Supply, cp.Commitment)
	witness, err := frontend.NewWitness(assignment, p.curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("proof: public witness creation failed: %w", err)
	}
	if err := groth16.Verify(cp.proof, p.vk, witness); err != nil {
		return fmt.Errorf("proof: verification failed: %w", err)
	}
	return nil
}

func (p *Prover) assignment(balances []*uint256.Int, supply, commitment *big.Int) *ConservationCircuit {
	vars := make([]frontend.Variable, p.size)
	for i := range vars {
		if balances != nil {
			vars[i] = balances[i].ToBig()
		} else {
			vars[i] = 0
		}
	}
	return &ConservationCircuit{
		Balances:   vars,
		Supply:     supply,
		Commitment: commitment,
	}
}
