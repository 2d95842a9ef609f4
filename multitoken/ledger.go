package multitoken

import (
	"fmt"

	"github.com/holiman/uint256"
)

// balanceKey addresses one balance cell. A composite key avoids the empty
// intermediate maps a nested id→account layout would leave behind.
type balanceKey struct {
	ID      TokenID
	Account Address
}

// Ledger owns the per-id, per-account balances. Every mutation is atomic:
// it either applies fully or leaves the ledger untouched.
//
// The ledger is not safe for concurrent use on its own; Engine serializes
// access to it.
type Ledger struct {
	registry *Registry
	balances map[balanceKey]*uint256.Int
}

// NewLedger creates an empty ledger gated by the given registry.
func NewLedger(registry *Registry) *Ledger {
	return &Ledger{
		registry: registry,
		balances: make(map[balanceKey]*uint256.Int),
	}
}

// BalanceOf returns the stored balance, or zero when the account holds
// nothing. The id must be in use.
func (l *Ledger) BalanceOf(id TokenID, account Address) (*uint256.Int, error) {
	if err := l.registry.AssertInUse(id); err != nil {
		return nil, err
	}
	return cloneAmount(l.balances[balanceKey{id, account}]), nil
}

// Mint credits an account and grows the token's total supply by the same
// amount. The id must have been created; minting is what takes it from
// registered to in use. Both additions are checked: an overflow fails with
// ErrOverflow and changes nothing.
func (l *Ledger) Mint(id TokenID, account Address, amount *uint256.Int) error {
	if account.IsZero() {
		return fmt.Errorf("%w: mint recipient", ErrZeroAddress)
	}
	if !l.registry.Created(id) {
		return fmt.Errorf("%w: id %d", ErrNotInUse, id)
	}
	amount = cloneAmount(amount)
	key := balanceKey{id, account}
	next, overflow := new(uint256.Int).AddOverflow(cloneAmount(l.balances[key]), amount)
	if overflow {
		return fmt.Errorf("%w: balance of %s", ErrOverflow, account)
	}
	// Supply grows by the same amount, so it overflows whenever the balance
	// would; check it before writing either.
	if err := l.registry.addSupply(id, amount); err != nil {
		return err
	}
	l.balances[key] = next
	return nil
}

// TransferOne moves amount from sender to recipient. A transfer to self or
// of a zero amount is a successful no-op. Fails with ErrZeroAddress on a
// null sender or recipient and ErrInsufficientBalance when the sender
// holds less than amount.
func (l *Ledger) TransferOne(id TokenID, sender, recipient Address, amount *uint256.Int) error {
	if err := l.registry.AssertInUse(id); err != nil {
		return err
	}
	action, err := classifyEntry(sender, recipient, amount)
	if err != nil {
		return err
	}
	if action == entrySkip {
		return nil
	}
	amount = cloneAmount(amount)
	from := balanceKey{id, sender}
	have := cloneAmount(l.balances[from])
	if have.Lt(amount) {
		return fmt.Errorf("%w: %s has %s of id %d, needs %s",
			ErrInsufficientBalance, sender, have.Dec(), id, amount.Dec())
	}
	to := balanceKey{id, recipient}
	credited, overflow := new(uint256.Int).AddOverflow(cloneAmount(l.balances[to]), amount)
	if overflow {
		return fmt.Errorf("%w: balance of %s", ErrOverflow, recipient)
	}
	l.balances[from] = have.Sub(have, amount)
	l.balances[to] = credited
	return nil
}

// TransferBatch applies many transfers as one all-or-nothing unit. All four
// slices must share a length. Per entry: a null sender or recipient aborts
// the whole batch; a zero amount or self-transfer is skipped; anything else
// is validated and staged. Only once every entry has passed does the stage
// commit, so a failure anywhere leaves no partial state — including when
// the same sender appears in several entries, which are validated
// cumulatively.
func (l *Ledger) TransferBatch(ids []TokenID, senders, recipients []Address, amounts []*uint256.Int) error {
	if len(senders) != len(ids) || len(recipients) != len(ids) || len(amounts) != len(ids) {
		return ErrLengthMismatch
	}
	if err := l.registry.AssertInUseBatch(ids); err != nil {
		return err
	}

	stage := newBalanceStage(l)
	for i := range ids {
		action, err := classifyEntry(senders[i], recipients[i], amounts[i])
		if err != nil {
			return err
		}
		if action == entrySkip {
			continue
		}
		if err := stage.move(ids[i], senders[i], recipients[i], amounts[i]); err != nil {
			return err
		}
	}
	stage.commit()
	return nil
}

// Snapshot deep-copies the current balances and supplies.
func (l *Ledger) Snapshot() *Snapshot {
	snap := NewSnapshot()
	for key, bal := range l.balances {
		if bal.IsZero() {
			continue
		}
		accounts := snap.Balances[key.ID]
		if accounts == nil {
			accounts = make(map[Address]*uint256.Int)
			snap.Balances[key.ID] = accounts
		}
		accounts[key.Account] = cloneAmount(bal)
	}
	for id, info := range l.registry.assets {
		snap.Supplies[id] = cloneAmount(info.TotalSupply)
	}
	return snap
}

// balanceStage accumulates debits and credits against a ledger without
// touching it, so a batch can be validated entry by entry and then applied
// in one step.
type balanceStage struct {
	ledger  *Ledger
	pending map[balanceKey]*uint256.Int
}

func newBalanceStage(l *Ledger) *balanceStage {
	return &balanceStage{ledger: l, pending: make(map[balanceKey]*uint256.Int)}
}

// get returns the staged value for key, faulting it in from the ledger.
func (s *balanceStage) get(key balanceKey) *uint256.Int {
	if v, ok := s.pending[key]; ok {
		return v
	}
	v := cloneAmount(s.ledger.balances[key])
	s.pending[key] = v
	return v
}

// move stages one debit/credit pair, validating against the staged values.
func (s *balanceStage) move(id TokenID, sender, recipient Address, amount *uint256.Int) error {
	amount = cloneAmount(amount)
	have := s.get(balanceKey{id, sender})
	if have.Lt(amount) {
		return fmt.Errorf("%w: %s has %s of id %d, needs %s",
			ErrInsufficientBalance, sender, have.Dec(), id, amount.Dec())
	}
	to := s.get(balanceKey{id, recipient})
	credited, overflow := new(uint256.Int).AddOverflow(to, amount)
	if overflow {
		return fmt.Errorf("%w: balance of %s", ErrOverflow, recipient)
	}
	have.Sub(have, amount)
	to.Set(credited)
	return nil
}

// commit writes every staged value back to the ledger.
func (s *balanceStage) commit() {
	for key, v := range s.pending {
		s.ledger.balances[key] = v
	}
}
