package calculator

import (
	"fmt"

	"github.com/splitledger/splitledger/internal/money"
)

// Transfer is one instruction in a settlement plan: FromUserID pays
// ToUserID the given amount.
type Transfer struct {
	FromUserID  string
	ToUserID    string
	AmountCents money.Cents
}

// party is one side of an outstanding balance during planning.
type party struct {
	userID string
	amount money.Cents // remaining claim or debt, always positive
}

// Plan derives an ordered list of transfers that brings every balance to
// zero. Balances that already net to zero produce an empty plan.
//
// The algorithm is a deterministic greedy matching: repeatedly pair the
// creditor with the largest remaining claim against the debtor with the
// largest remaining debt (ties broken by userID ascending) and transfer the
// smaller of the two. This yields at most len(balances)-1 transfers. True
// minimum-transaction settlement is NP-hard in general, so the greedy
// result is near-minimal rather than provably minimal.
func Plan(balances map[string]money.Cents) ([]Transfer, error) {
	var creditors, debtors []party
	var sum money.Cents
	for id, b := range balances {
		sum += b
		switch {
		case b > 0:
			creditors = append(creditors, party{userID: id, amount: b})
		case b < 0:
			debtors = append(debtors, party{userID: id, amount: -b})
		}
	}
	if sum != 0 {
		return nil, fmt.Errorf("%w: balances sum to %d, cannot be settled to zero", ErrInternalConsistency, sum)
	}

	var transfers []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)

		amount := creditors[ci].amount
		if debtors[di].amount < amount {
			amount = debtors[di].amount
		}
		transfers = append(transfers, Transfer{
			FromUserID:  debtors[di].userID,
			ToUserID:    creditors[ci].userID,
			AmountCents: amount,
		})

		creditors[ci].amount -= amount
		debtors[di].amount -= amount
		if creditors[ci].amount == 0 {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
		if debtors[di].amount == 0 {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
	}

	if err := verifyPlan(balances, transfers); err != nil {
		return nil, err
	}
	return transfers, nil
}

// largest returns the index of the party with the greatest remaining
// amount, breaking ties by userID ascending for determinism.
func largest(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		if parties[i].amount > parties[best].amount ||
			(parties[i].amount == parties[best].amount && parties[i].userID < parties[best].userID) {
			best = i
		}
	}
	return best
}

// verifyPlan checks that applying every transfer zeroes the input balances.
func verifyPlan(balances map[string]money.Cents, transfers []Transfer) error {
	remaining := make(map[string]money.Cents, len(balances))
	for id, b := range balances {
		remaining[id] = b
	}
	for _, t := range transfers {
		remaining[t.FromUserID] += t.AmountCents
		remaining[t.ToUserID] -= t.AmountCents
	}
	for id, b := range remaining {
		if b != 0 {
			return fmt.Errorf("%w: plan leaves %q with balance %d", ErrInternalConsistency, id, b)
		}
	}
	return nil
}
