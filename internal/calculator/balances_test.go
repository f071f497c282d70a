package calculator

import (
	"testing"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

func expense(payer string, amount money.Cents, shares map[string]money.Cents) *models.Expense {
	e := &models.Expense{PayerID: payer, AmountCents: amount, SplitType: models.SplitExact}
	for user, share := range shares {
		e.Participants = append(e.Participants, models.ExpenseParticipant{UserID: user, ShareCents: share})
	}
	return e
}

func TestAggregate(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	tests := []struct {
		name        string
		expenses    []*models.Expense
		settlements []*models.Settlement
		want        map[string]money.Cents
	}{
		{
			name: "no history yields zero balances for every member",
			want: map[string]money.Cents{"alice": 0, "bob": 0, "carol": 0},
		},
		{
			name: "single expense credits payer and debits participants",
			expenses: []*models.Expense{
				expense("alice", 900, map[string]money.Cents{"alice": 300, "bob": 300, "carol": 300}),
			},
			want: map[string]money.Cents{"alice": 600, "bob": -300, "carol": -300},
		},
		{
			name: "payer outside participant list owes nothing",
			expenses: []*models.Expense{
				expense("alice", 600, map[string]money.Cents{"bob": 300, "carol": 300}),
			},
			want: map[string]money.Cents{"alice": 600, "bob": -300, "carol": -300},
		},
		{
			name: "expenses from several payers net out",
			expenses: []*models.Expense{
				expense("alice", 900, map[string]money.Cents{"alice": 300, "bob": 300, "carol": 300}),
				expense("bob", 300, map[string]money.Cents{"alice": 150, "bob": 150}),
			},
			want: map[string]money.Cents{"alice": 450, "bob": -150, "carol": -300},
		},
		{
			name: "confirmed settlement moves money back",
			expenses: []*models.Expense{
				expense("alice", 900, map[string]money.Cents{"alice": 300, "bob": 300, "carol": 300}),
			},
			settlements: []*models.Settlement{
				{FromUserID: "bob", ToUserID: "alice", AmountCents: 300, Status: models.SettlementConfirmed},
			},
			want: map[string]money.Cents{"alice": 300, "bob": 0, "carol": -300},
		},
		{
			name: "pending settlement does not affect balances",
			expenses: []*models.Expense{
				expense("alice", 900, map[string]money.Cents{"alice": 300, "bob": 300, "carol": 300}),
			},
			settlements: []*models.Settlement{
				{FromUserID: "bob", ToUserID: "alice", AmountCents: 300, Status: models.SettlementPending},
			},
			want: map[string]money.Cents{"alice": 600, "bob": -300, "carol": -300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(members, tt.expenses, tt.settlements)
			if err != nil {
				t.Fatalf("Aggregate() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Aggregate() returned %d balances, want %d", len(got), len(tt.want))
			}
			var sum money.Cents
			for user, want := range tt.want {
				if got[user] != want {
					t.Errorf("balance[%s] = %d, want %d", user, got[user], want)
				}
				sum += got[user]
			}
			if sum != 0 {
				t.Errorf("balances sum to %d, want 0", sum)
			}
		})
	}
}

// TestAggregateIncrementalMatchesRecompute checks that applying updates one
// at a time lands on the same balances as a full recompute.
func TestAggregateIncrementalMatchesRecompute(t *testing.T) {
	members := []string{"alice", "bob", "carol", "dave"}
	expenses := []*models.Expense{
		expense("alice", 1003, map[string]money.Cents{"alice": 251, "bob": 251, "carol": 251, "dave": 250}),
		expense("bob", 777, map[string]money.Cents{"bob": 259, "carol": 259, "dave": 259}),
		expense("carol", 50, map[string]money.Cents{"alice": 25, "dave": 25}),
	}
	settlements := []*models.Settlement{
		{FromUserID: "dave", ToUserID: "alice", AmountCents: 200, Status: models.SettlementConfirmed},
		{FromUserID: "carol", ToUserID: "alice", AmountCents: 100, Status: models.SettlementPending},
		{FromUserID: "carol", ToUserID: "bob", AmountCents: 150, Status: models.SettlementConfirmed},
	}

	full, err := Aggregate(members, expenses, settlements)
	if err != nil {
		t.Fatalf("Aggregate() failed: %v", err)
	}

	incremental := map[string]money.Cents{"alice": 0, "bob": 0, "carol": 0, "dave": 0}
	for _, e := range expenses {
		ApplyExpense(incremental, e)
	}
	for _, s := range settlements {
		ApplySettlement(incremental, s)
	}

	for user, want := range full {
		if incremental[user] != want {
			t.Errorf("incremental balance[%s] = %d, full recompute = %d", user, incremental[user], want)
		}
	}
}

func TestAggregateDetectsCorruptExpense(t *testing.T) {
	// An expense whose shares do not sum to its amount can only come from a
	// bug or corrupted storage; aggregation must refuse to report balances.
	broken := expense("alice", 1000, map[string]money.Cents{"alice": 300, "bob": 300})
	_, err := Aggregate([]string{"alice", "bob"}, []*models.Expense{broken}, nil)
	if err == nil {
		t.Fatal("Aggregate() accepted an out-of-balance expense")
	}
}
