package calculator

import (
	"fmt"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

// Aggregate folds a group's expense history and confirmed settlements into
// one signed balance per member. Positive means the group owes the member;
// negative means the member owes the group.
//
// Every member in memberIDs appears in the result, even with a zero balance.
// Pending settlements are ignored: only confirmed transfers move money.
//
// The zero-sum invariant (total owed equals total owing) is asserted after
// the fold; a violation is an engine fault, never silently corrected.
func Aggregate(memberIDs []string, expenses []*models.Expense, settlements []*models.Settlement) (map[string]money.Cents, error) {
	balances := make(map[string]money.Cents, len(memberIDs))
	for _, id := range memberIDs {
		balances[id] = 0
	}

	for _, e := range expenses {
		ApplyExpense(balances, e)
	}
	for _, s := range settlements {
		ApplySettlement(balances, s)
	}

	var sum money.Cents
	for _, b := range balances {
		sum += b
	}
	if sum != 0 {
		return nil, fmt.Errorf("%w: group balances sum to %d, want 0", ErrInternalConsistency, sum)
	}
	return balances, nil
}

// ApplyExpense folds one expense into an existing balance map: the payer is
// credited the full amount they advanced, and every participant (payer
// included, if they partake) is debited their share. The incremental update
// is identical to what a full Aggregate recompute would produce.
func ApplyExpense(balances map[string]money.Cents, e *models.Expense) {
	balances[e.PayerID] += e.AmountCents
	for _, p := range e.Participants {
		balances[p.UserID] -= p.ShareCents
	}
}

// ApplySettlement folds one settlement into an existing balance map. The
// debtor paid off debt, so their balance rises; the creditor's claim is
// satisfied, so their balance falls. Settlements that are not confirmed are
// a no-op.
func ApplySettlement(balances map[string]money.Cents, s *models.Settlement) {
	if s.Status != models.SettlementConfirmed {
		return
	}
	balances[s.FromUserID] += s.AmountCents
	balances[s.ToUserID] -= s.AmountCents
}
