package multitoken

import (
	"fmt"

	"github.com/holiman/uint256"
)

// entryAction is the outcome of classifying one batch entry.
type entryAction int

const (
	// entryProceed: the entry moves value and must be validated.
	entryProceed entryAction = iota
	// entrySkip: the entry changes no state but does not fail the batch.
	entrySkip
)

// classifyEntry sorts a transfer entry into abort / skip / proceed. The
// null-account check comes first: a zero sender or recipient aborts even
// when the amount is zero. A zero amount or a self-transfer is a skip.
// Single transfers share this classification so the two paths cannot
// drift apart.
func classifyEntry(sender, recipient Address, amount *uint256.Int) (entryAction, error) {
	if sender.IsZero() {
		return 0, fmt.Errorf("%w: sender", ErrZeroAddress)
	}
	if recipient.IsZero() {
		return 0, fmt.Errorf("%w: recipient", ErrZeroAddress)
	}
	if amount == nil || amount.IsZero() || sender == recipient {
		return entrySkip, nil
	}
	return entryProceed, nil
}
