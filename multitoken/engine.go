package multitoken

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-multitoken/journal"
)

// Engine is the operation surface of the ledger. It wires the registry,
// balance ledger, and authorization store together, appends one audit
// event per successful mutation, and serializes every operation behind a
// single lock so each runs to completion with no interleaving — the same
// observable semantics as a strictly serialized execution environment.
//
// Caller identity is an explicit parameter on every operation; the engine
// makes no assumptions about how callers are authenticated.
type Engine struct {
	mu       sync.RWMutex
	registry *Registry
	ledger   *Ledger
	auth     *AuthStore
	journal  journal.Sink
}

// NewEngine creates an empty ledger engine. The sink receives one audit
// event per successful mutation; pass nil to disable auditing. A sink
// failure surfaces to the caller after state has committed — the ledger
// never rolls back for its audit trail.
func NewEngine(sink journal.Sink) *Engine {
	registry := NewRegistry()
	return &Engine{
		registry: registry,
		ledger:   NewLedger(registry),
		auth:     NewAuthStore(registry),
		journal:  sink,
	}
}

// Create registers a new token id. When info carries a nonzero total
// supply, the whole supply is credited to the caller, keeping the
// conservation invariant (sum of balances == total supply) from the first
// moment the id is in use. Emits a creation event, plus a mint-style
// transfer event for the initial credit.
func (e *Engine) Create(caller Address, id TokenID, info AssetInfo) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	supply := cloneAmount(info.TotalSupply)
	if !supply.IsZero() && caller.IsZero() {
		return fmt.Errorf("%w: creator of id %d", ErrZeroAddress, id)
	}

	stored := info
	stored.TotalSupply = new(uint256.Int) // Mint below grows it
	if err := e.registry.Create(id, stored); err != nil {
		return err
	}
	if !supply.IsZero() {
		if err := e.ledger.Mint(id, caller, supply); err != nil {
			return err
		}
	}

	if err := e.emit(journal.Created(caller.String(), uint64(id), info.Name, info.Symbol, info.Decimals, supply)); err != nil {
		return err
	}
	if !supply.IsZero() {
		return e.emit(journal.TransferSingle(caller.String(), uint64(id), ZeroAddress.String(), caller.String(), supply))
	}
	return nil
}

// Mint credits to and grows the total supply of id by amount. The id must
// have been created. Emits a transfer event from the zero address.
func (e *Engine) Mint(caller Address, id TokenID, to Address, amount *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ledger.Mint(id, to, amount); err != nil {
		return err
	}
	return e.emit(journal.TransferSingle(caller.String(), uint64(id), ZeroAddress.String(), to.String(), amount))
}

// Transfer moves amount of id from the caller to recipient.
func (e *Engine) Transfer(caller Address, id TokenID, recipient Address, amount *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ledger.TransferOne(id, caller, recipient, amount); err != nil {
		return err
	}
	return e.emit(journal.TransferSingle(caller.String(), uint64(id), caller.String(), recipient.String(), amount))
}

// TransferBatch moves many (id, recipient, amount) entries from the caller
// in one atomic unit. One batch event covers all entries.
func (e *Engine) TransferBatch(caller Address, ids []TokenID, recipients []Address, amounts []*uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	senders := make([]Address, len(ids))
	for i := range senders {
		senders[i] = caller
	}
	if err := e.ledger.TransferBatch(ids, senders, recipients, amounts); err != nil {
		return err
	}
	ev := journal.TransferBatch(caller.String(), tokenIDs(ids), nil, addresses(recipients), amounts)
	ev.From = caller.String()
	return e.emit(ev)
}

// Approve sets (absolutely, not additively) the allowance spender may move
// out of the caller's balance of id.
func (e *Engine) Approve(caller Address, id TokenID, spender Address, amount *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.auth.Approve(id, caller, spender, amount); err != nil {
		return err
	}
	return e.emit(journal.Approval(caller.String(), uint64(id), caller.String(), spender.String(), amount))
}

// ApproveGlobal sets or clears the caller's global authorization of
// spender: while set, spender may move any amount of any id out of the
// caller's balances without consulting or spending allowances.
func (e *Engine) ApproveGlobal(caller, spender Address, status bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.auth.SetGlobal(caller, spender, status)
	return e.emit(journal.ApprovalGlobal(caller.String(), caller.String(), spender.String(), status))
}

// TransferFrom moves amount of id from owner to recipient on the caller's
// authority. A global authorization bypasses the allowance table entirely;
// otherwise the allowance must cover amount and is decremented by exactly
// the spent amount.
func (e *Engine) TransferFrom(caller Address, id TokenID, owner, recipient Address, amount *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	amount = cloneAmount(amount)
	if !e.auth.IsGloballyAuthorized(owner, caller) {
		remaining, err := e.auth.Allowance(id, owner, caller)
		if err != nil {
			return err
		}
		if remaining.Lt(amount) {
			return fmt.Errorf("%w: %s may spend %s of id %d from %s, needs %s",
				ErrInsufficientAllowance, caller, remaining.Dec(), id, owner, amount.Dec())
		}
		if err := e.ledger.TransferOne(id, owner, recipient, amount); err != nil {
			return err
		}
		e.auth.setAllowance(allowanceKey{id, owner, caller}, remaining.Sub(remaining, amount))
	} else if err := e.ledger.TransferOne(id, owner, recipient, amount); err != nil {
		return err
	}
	ev := journal.TransferSingle(caller.String(), uint64(id), owner.String(), recipient.String(), amount)
	ev.Delegated = true
	return e.emit(ev)
}

// TransferFromBatch moves many (id, owner, recipient, amount) entries on
// the caller's authority as one atomic unit. Allowances for every entry
// are validated and staged before any balance moves; entries under a
// global authorization skip allowance accounting and report a zero
// remainder. Emits one batch transfer event and one batch approval event
// carrying the post-decrement allowances.
func (e *Engine) TransferFromBatch(caller Address, ids []TokenID, owners, recipients []Address, amounts []*uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(amounts) != len(ids) || len(owners) != len(amounts) || len(recipients) != len(amounts) {
		return ErrLengthMismatch
	}
	if err := e.registry.AssertInUseBatch(ids); err != nil {
		return err
	}

	// Stage allowance decrements. The same (id, owner) pair may appear in
	// several entries; decrements accumulate against the staged value so
	// the batch cannot spend one allowance twice.
	staged := make(map[allowanceKey]*uint256.Int)
	remaining := make([]*uint256.Int, len(ids))
	for i := range ids {
		if e.auth.IsGloballyAuthorized(owners[i], caller) {
			remaining[i] = new(uint256.Int)
			continue
		}
		key := allowanceKey{ids[i], owners[i], caller}
		left, ok := staged[key]
		if !ok {
			left = cloneAmount(e.auth.allowances[key])
			staged[key] = left
		}
		amount := cloneAmount(amounts[i])
		if left.Lt(amount) {
			return fmt.Errorf("%w: %s may spend %s of id %d from %s, needs %s",
				ErrInsufficientAllowance, caller, left.Dec(), ids[i], owners[i], amount.Dec())
		}
		left.Sub(left, amount)
		remaining[i] = cloneAmount(left)
	}

	// Balances validate and commit as one unit; allowances commit after,
	// so a failing entry anywhere leaves both tables untouched.
	if err := e.ledger.TransferBatch(ids, owners, recipients, amounts); err != nil {
		return err
	}
	for key, left := range staged {
		e.auth.setAllowance(key, left)
	}

	if err := e.emit(journal.TransferBatch(caller.String(), tokenIDs(ids), addresses(owners), addresses(recipients), amounts)); err != nil {
		return err
	}
	return e.emit(journal.ApprovalBatch(caller.String(), tokenIDs(ids), addresses(owners), caller.String(), remaining))
}

// AssetInfo returns the metadata of id, zero-valued when never created.
func (e *Engine) AssetInfo(id TokenID) AssetInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.Info(id)
}

// BalanceOf returns the balance of account for id. The id must be in use.
func (e *Engine) BalanceOf(id TokenID, account Address) (*uint256.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.BalanceOf(id, account)
}

// AllowanceOf returns the remaining allowance of (id, owner, spender).
// The id must be in use.
func (e *Engine) AllowanceOf(id TokenID, owner, spender Address) (*uint256.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.auth.Allowance(id, owner, spender)
}

// IsGloballyAuthorized reports whether spender holds owner's global flag.
func (e *Engine) IsGloballyAuthorized(owner, spender Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.auth.IsGloballyAuthorized(owner, spender)
}

// Snapshot deep-copies the current balances and supplies.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Snapshot()
}

// emit appends one audit event, tolerating a nil sink.
func (e *Engine) emit(ev journal.Event) error {
	if e.journal == nil {
		return nil
	}
	if err := e.journal.Append(ev); err != nil {
		return fmt.Errorf("multitoken: journal append: %w", err)
	}
	return nil
}

func tokenIDs(ids []TokenID) []uint64 {
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}

func addresses(addrs []Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}
