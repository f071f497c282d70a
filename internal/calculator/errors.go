package calculator

import "errors"

var (
	// ErrInvalidSplit indicates the split inputs are inconsistent for the
	// chosen policy (caller's fault, never retried).
	ErrInvalidSplit = errors.New("invalid split")

	// ErrInternalConsistency indicates a post-condition failed: a computed
	// split did not sum to the expense amount, or aggregated balances did
	// not sum to zero. It signals an engine bug and must be surfaced, not
	// swallowed.
	ErrInternalConsistency = errors.New("internal consistency violation")
)
