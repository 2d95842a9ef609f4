// Package journal provides the ledger's audit trail: one typed, ordered,
// append-only event per mutating operation, with JSONL and CSV codecs for
// export and replay.
package journal

import (
	"time"

	"github.com/holiman/uint256"
)

// Type names an audit event kind.
type Type string

const (
	// TypeCreated records asset creation.
	TypeCreated Type = "Created"
	// TypeTransferSingle records one transfer. Mints appear as transfers
	// from the zero address.
	TypeTransferSingle Type = "TransferSingle"
	// TypeTransferBatch records an atomic batch of transfers.
	TypeTransferBatch Type = "TransferBatch"
	// TypeApproval records an absolute allowance set.
	TypeApproval Type = "Approval"
	// TypeApprovalBatch records the post-decrement allowances left behind
	// by a delegated batch transfer.
	TypeApprovalBatch Type = "ApprovalBatch"
	// TypeApprovalGlobal records setting or clearing the global
	// authorization flag.
	TypeApprovalGlobal Type = "ApprovalForAll"
)

// Event is one audit record. A single flat shape covers every event kind;
// unused fields stay empty so JSONL lines carry only what the kind needs.
// Addresses are 0x-hex strings and amounts decimal strings, since 256-bit
// values do not survive a float64 round trip.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Operator  string    `json:"operator,omitempty"` // caller that triggered the operation

	ID  uint64   `json:"id,omitempty"`  // token id for single-id events
	IDs []uint64 `json:"ids,omitempty"` // token ids for batch events

	From   string   `json:"from,omitempty"`
	To     string   `json:"to,omitempty"`
	Owners []string `json:"owners,omitempty"`
	Tos    []string `json:"tos,omitempty"`

	Owner   string `json:"owner,omitempty"`
	Spender string `json:"spender,omitempty"`

	Amount    string   `json:"amount,omitempty"`
	Amounts   []string `json:"amounts,omitempty"`
	Remaining []string `json:"remaining,omitempty"` // allowances after a delegated batch

	// Delegated marks a transfer that ran on the operator's spending
	// authority rather than the sender's own. Without it a delegated
	// transfer where the owner is the operator would be indistinguishable
	// from a direct one, and replay would skip its allowance decrement.
	Delegated bool `json:"delegated,omitempty"`

	Approved *bool `json:"approved,omitempty"` // global flag status

	Name     string `json:"name,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
	Decimals uint8  `json:"decimals,omitempty"`
	Supply   string `json:"supply,omitempty"`
}

// Sink receives audit events in operation order. Appends may fail (a
// persistent sink can); the failure surfaces to the caller of the
// operation that produced the event.
type Sink interface {
	Append(Event) error
}

// Created builds an asset-creation event.
func Created(operator string, id uint64, name, symbol string, decimals uint8, supply *uint256.Int) Event {
	return Event{
		Type:     TypeCreated,
		Operator: operator,
		ID:       id,
		Name:     name,
		Symbol:   symbol,
		Decimals: decimals,
		Supply:   Amount(supply),
	}
}

// TransferSingle builds a single-transfer event. Pass the zero address as
// from for a mint.
func TransferSingle(operator string, id uint64, from, to string, amount *uint256.Int) Event {
	return Event{
		Type:     TypeTransferSingle,
		Operator: operator,
		ID:       id,
		From:     from,
		To:       to,
		Amount:   Amount(amount),
	}
}

// TransferBatch builds a batch-transfer event covering every entry.
func TransferBatch(operator string, ids []uint64, owners, tos []string, amounts []*uint256.Int) Event {
	return Event{
		Type:     TypeTransferBatch,
		Operator: operator,
		IDs:      ids,
		Owners:   owners,
		Tos:      tos,
		Amounts:  Amounts(amounts),
	}
}

// Approval builds an allowance-set event.
func Approval(operator string, id uint64, owner, spender string, amount *uint256.Int) Event {
	return Event{
		Type:     TypeApproval,
		Operator: operator,
		ID:       id,
		Owner:    owner,
		Spender:  spender,
		Amount:   Amount(amount),
	}
}

// ApprovalBatch builds the companion event of a delegated batch transfer,
// reporting the allowance remaining for each entry after its decrement.
// Entries covered by a global authorization report zero.
func ApprovalBatch(operator string, ids []uint64, owners []string, spender string, remaining []*uint256.Int) Event {
	return Event{
		Type:      TypeApprovalBatch,
		Operator:  operator,
		IDs:       ids,
		Owners:    owners,
		Spender:   spender,
		Remaining: Amounts(remaining),
	}
}

// ApprovalGlobal builds a global-flag event.
func ApprovalGlobal(operator, owner, spender string, approved bool) Event {
	return Event{
		Type:     TypeApprovalGlobal,
		Operator: operator,
		Owner:    owner,
		Spender:  spender,
		Approved: &approved,
	}
}

// Amount formats an amount as a decimal string, nil as "0".
func Amount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// Amounts formats a slice of amounts as decimal strings.
func Amounts(vs []*uint256.Int) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = Amount(v)
	}
	return out
}
