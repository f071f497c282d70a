// Package calculator implements the ledger engine: expense splitting,
// balance aggregation, and settlement planning. All functions are pure and
// integer-only; they are safe to call from any number of goroutines.
package calculator

import (
	"fmt"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

// ParticipantInput describes one participant in a split request. Exactly one
// of the optional fields is consulted, depending on the split type.
type ParticipantInput struct {
	UserID string

	// ShareCents is this participant's exact amount (exact splits only).
	ShareCents *money.Cents

	// SharePercent is this participant's percentage in basis points
	// (percentage splits only).
	SharePercent *money.BasisPoints

	// ShareCount is this participant's weight (shares splits only).
	ShareCount *int64
}

// Split divides amount among participants under the given policy, returning
// per-participant shares that sum exactly to amount. The shares are returned
// in participant list order; remainder cents from integer division go to the
// earliest participants, one cent each.
func Split(amount money.Cents, splitType models.SplitType, participants []ParticipantInput) ([]models.ExpenseParticipant, error) {
	if amount < 1 {
		return nil, fmt.Errorf("%w: amount must be at least 1 cent, got %d", ErrInvalidSplit, amount)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: at least one participant required", ErrInvalidSplit)
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.UserID == "" {
			return nil, fmt.Errorf("%w: participant user id required", ErrInvalidSplit)
		}
		if seen[p.UserID] {
			return nil, fmt.Errorf("%w: duplicate participant %q", ErrInvalidSplit, p.UserID)
		}
		seen[p.UserID] = true
	}

	var shares []money.Cents
	var err error
	switch splitType {
	case models.SplitEqual:
		shares, err = splitEqual(amount, participants)
	case models.SplitExact:
		shares, err = splitExact(amount, participants)
	case models.SplitPercentage:
		shares, err = splitPercentage(amount, participants)
	case models.SplitShares:
		shares, err = splitShares(amount, participants)
	default:
		return nil, fmt.Errorf("%w: unknown split type %q", ErrInvalidSplit, splitType)
	}
	if err != nil {
		return nil, err
	}

	result := make([]models.ExpenseParticipant, len(participants))
	var sum money.Cents
	for i, p := range participants {
		result[i] = models.ExpenseParticipant{UserID: p.UserID, ShareCents: shares[i]}
		sum += shares[i]
	}

	// Fail closed rather than emit an out-of-balance expense.
	if sum != amount {
		return nil, fmt.Errorf("%w: split shares sum to %d, want %d", ErrInternalConsistency, sum, amount)
	}
	return result, nil
}

// splitEqual divides amount evenly using integer division. The remainder
// r = amount mod n goes one cent at a time to the first r participants.
func splitEqual(amount money.Cents, participants []ParticipantInput) ([]money.Cents, error) {
	n := money.Cents(len(participants))
	base := amount / n
	shares := make([]money.Cents, len(participants))
	for i := range shares {
		shares[i] = base
	}
	distributeRemainder(shares, amount-base*n)
	return shares, nil
}

// splitExact uses the caller-supplied amounts, which must be non-negative
// and sum to exactly the expense amount.
func splitExact(amount money.Cents, participants []ParticipantInput) ([]money.Cents, error) {
	shares := make([]money.Cents, len(participants))
	var sum money.Cents
	for i, p := range participants {
		if p.ShareCents == nil {
			return nil, fmt.Errorf("%w: exact split requires share amount for %q", ErrInvalidSplit, p.UserID)
		}
		if *p.ShareCents < 0 {
			return nil, fmt.Errorf("%w: negative share %d for %q", ErrInvalidSplit, *p.ShareCents, p.UserID)
		}
		shares[i] = *p.ShareCents
		sum += *p.ShareCents
	}
	if sum != amount {
		return nil, fmt.Errorf("%w: exact shares sum to %d, want %d", ErrInvalidSplit, sum, amount)
	}
	return shares, nil
}

// splitPercentage computes floor(amount * pct / 100%) per participant, then
// distributes the leftover cents left to right. Percentages must sum to
// exactly 100%; silently-wrong totals are rejected, never auto-normalized.
func splitPercentage(amount money.Cents, participants []ParticipantInput) ([]money.Cents, error) {
	var totalPct money.BasisPoints
	for _, p := range participants {
		if p.SharePercent == nil {
			return nil, fmt.Errorf("%w: percentage split requires percentage for %q", ErrInvalidSplit, p.UserID)
		}
		if *p.SharePercent < 0 || *p.SharePercent > money.TotalBasisPoints {
			return nil, fmt.Errorf("%w: percentage %d out of range for %q", ErrInvalidSplit, *p.SharePercent, p.UserID)
		}
		totalPct += *p.SharePercent
	}
	if totalPct != money.TotalBasisPoints {
		return nil, fmt.Errorf("%w: percentages sum to %d basis points, want %d", ErrInvalidSplit, totalPct, money.TotalBasisPoints)
	}

	shares := make([]money.Cents, len(participants))
	var allocated money.Cents
	for i, p := range participants {
		shares[i] = amount * money.Cents(*p.SharePercent) / money.Cents(money.TotalBasisPoints)
		allocated += shares[i]
	}
	distributeRemainder(shares, amount-allocated)
	return shares, nil
}

// splitShares divides amount proportionally to positive integer weights,
// flooring each share and distributing leftover cents left to right.
func splitShares(amount money.Cents, participants []ParticipantInput) ([]money.Cents, error) {
	var totalShares int64
	for _, p := range participants {
		if p.ShareCount == nil {
			return nil, fmt.Errorf("%w: shares split requires share count for %q", ErrInvalidSplit, p.UserID)
		}
		if *p.ShareCount < 1 {
			return nil, fmt.Errorf("%w: share count must be positive for %q, got %d", ErrInvalidSplit, p.UserID, *p.ShareCount)
		}
		totalShares += *p.ShareCount
	}

	shares := make([]money.Cents, len(participants))
	var allocated money.Cents
	for i, p := range participants {
		shares[i] = amount * money.Cents(*p.ShareCount) / money.Cents(totalShares)
		allocated += shares[i]
	}
	distributeRemainder(shares, amount-allocated)
	return shares, nil
}

// distributeRemainder hands out remainder cents one at a time, in list
// order, so the first participants absorb the rounding.
func distributeRemainder(shares []money.Cents, remainder money.Cents) {
	for i := 0; remainder > 0; i++ {
		shares[i]++
		remainder--
	}
}
