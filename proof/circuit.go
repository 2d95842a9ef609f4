package proof

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// ConservationCircuit proves, for one token id, that a committed set of
// balances sums to the declared total supply. The balances are private;
// the supply and the MiMC commitment binding the balances are public, so
// a verifier learns only that conservation holds for the committed state.
//
// The circuit size (number of balance slots) is fixed at compile time;
// unused slots carry zero, which neither the sum nor the digest layout
// distinguishes from an absent account. Amounts must fit the BN254 scalar
// field.
type ConservationCircuit struct {
	Balances []frontend.Variable `gnark:",secret"`

	Supply     frontend.Variable `gnark:",public"`
	Commitment frontend.Variable `gnark:",public"`
}

// Define declares the circuit constraints.
func (c *ConservationCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	sum := frontend.Variable(0)
	for _, bal := range c.Balances {
		sum = api.Add(sum, bal)
		h.Write(bal)
	}

	api.AssertIsEqual(sum, c.Supply)
	api.AssertIsEqual(h.Sum(), c.Commitment)
	return nil
}
