package models

import "github.com/splitledger/splitledger/internal/money"

// SplitType selects the policy used to divide an expense among its
// participants.
type SplitType string

const (
	// SplitEqual divides the amount evenly, remainder cents going to the
	// earliest participants in list order.
	SplitEqual SplitType = "equal"

	// SplitExact uses caller-supplied per-participant amounts that must sum
	// to the expense amount.
	SplitExact SplitType = "exact"

	// SplitPercentage divides by caller-supplied percentages (in basis
	// points) that must sum to exactly 100%.
	SplitPercentage SplitType = "percentage"

	// SplitShares divides proportionally to caller-supplied positive share
	// counts.
	SplitShares SplitType = "shares"
)

// Valid reports whether t is one of the known split types.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitExact, SplitPercentage, SplitShares:
		return true
	}
	return false
}

// ExpenseParticipant is one member's exact share of an expense. It is owned
// by its Expense and never mutated independently.
type ExpenseParticipant struct {
	// UserID references the participating member.
	UserID string

	// ShareCents is this participant's portion of the expense amount.
	// Always >= 0, and across an expense the shares sum to AmountCents.
	ShareCents money.Cents
}

// Expense represents a payment made by one member on behalf of several.
// Once created it is immutable as a financial event: edits replace the
// amount and participant shares wholesale by re-running the splitter.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the member who advanced the money.
	PayerID string

	// Description is a short human-readable label (e.g., "Groceries").
	Description string

	// AmountCents is the total expense amount, always >= 1.
	AmountCents money.Cents

	// SplitType records which policy produced the participant shares.
	SplitType SplitType

	// Participants holds the per-member shares, in the order the expense
	// was created with. Order matters: remainder cents are distributed
	// left to right.
	Participants []ExpenseParticipant

	// CreatedBy is the user ID who recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64
}
