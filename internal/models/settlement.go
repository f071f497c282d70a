package models

import "github.com/splitledger/splitledger/internal/money"

// SettlementStatus tracks a settlement through its lifecycle.
type SettlementStatus string

const (
	// SettlementPending means the transfer is proposed but not yet made.
	// Pending settlements do not affect balances and may be cancelled.
	SettlementPending SettlementStatus = "pending"

	// SettlementConfirmed means the transfer happened. Confirmed
	// settlements are immutable history and always included in balance
	// aggregation. They can only be reversed by recording an explicit
	// opposite settlement.
	SettlementConfirmed SettlementStatus = "confirmed"
)

// Settlement records a transfer from a debtor to a creditor intended to
// reduce outstanding balances within a group.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the debtor making the payment.
	FromUserID string

	// ToUserID is the creditor receiving the payment.
	ToUserID string

	// AmountCents is the transfer amount, always >= 1.
	AmountCents money.Cents

	// Method describes how the payment was or will be made
	// (e.g., "cash", "bank_transfer", "payment_link"). Free-form;
	// provider integration lives outside this service.
	Method string

	// Status is pending until the transfer is confirmed.
	Status SettlementStatus

	// Note is an optional description for the settlement.
	Note string

	// CreatedBy is the user ID who recorded or proposed the settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// ConfirmedAt is the Unix timestamp of confirmation, 0 while pending.
	ConfirmedAt int64
}
