package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage/sqlite"
)

type testEnv struct {
	store       *sqlite.SQLiteStore
	ledger      *Ledger
	expenses    *ExpenseService
	settlements *SettlementService
	groups      *GroupService
	group       *models.Group
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "splitledger-service-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ledger := NewLedger()
	env := &testEnv{
		store:       store,
		ledger:      ledger,
		expenses:    NewExpenseService(store, ledger, nil),
		settlements: NewSettlementService(store, ledger, nil),
		groups:      NewGroupService(store),
	}

	group, err := env.groups.Create(context.Background(), "alice", "Trip", "USD", []string{"bob", "carol"})
	require.NoError(t, err)
	env.group = group
	return env
}

// addEqualExpense creates an equal-split expense paid by payerID among the
// given participants.
func (e *testEnv) addEqualExpense(t *testing.T, payerID string, amount money.Cents, participantIDs ...string) *models.Expense {
	t.Helper()
	participants := make([]calculator.ParticipantInput, len(participantIDs))
	for i, id := range participantIDs {
		participants[i] = calculator.ParticipantInput{UserID: id}
	}
	expense, err := e.expenses.Create(context.Background(), payerID, ExpenseInput{
		GroupID:      e.group.ID,
		PayerID:      payerID,
		Description:  "test expense",
		AmountCents:  amount,
		SplitType:    models.SplitEqual,
		Participants: participants,
	})
	require.NoError(t, err)
	return expense
}

func sumBalances(balances map[string]money.Cents) money.Cents {
	var sum money.Cents
	for _, b := range balances {
		sum += b
	}
	return sum
}
