package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

func TestSettlementServiceComputeBalances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("empty group has all-zero balances", func(t *testing.T) {
		balances, err := env.settlements.ComputeBalances(ctx, "alice", env.group.ID)
		require.NoError(t, err)
		require.Len(t, balances, 3)
		for id, b := range balances {
			assert.Equal(t, money.Cents(0), b, "member %s", id)
		}
	})

	t.Run("balances are zero-sum after expenses", func(t *testing.T) {
		env.addEqualExpense(t, "alice", 500, "alice", "bob")
		env.addEqualExpense(t, "bob", 301, "alice", "bob", "carol")

		balances, err := env.settlements.ComputeBalances(ctx, "carol", env.group.ID)
		require.NoError(t, err)
		assert.Equal(t, money.Cents(0), sumBalances(balances))
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		_, err := env.settlements.ComputeBalances(ctx, "mallory", env.group.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("returned map is a copy", func(t *testing.T) {
		balances, err := env.settlements.ComputeBalances(ctx, "alice", env.group.ID)
		require.NoError(t, err)
		balances["alice"] = 999999

		again, err := env.settlements.ComputeBalances(ctx, "alice", env.group.ID)
		require.NoError(t, err)
		assert.NotEqual(t, money.Cents(999999), again["alice"])
	})
}

func TestSettlementServiceProposePlan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addEqualExpense(t, "alice", 750, "alice", "bob", "carol")
	env.addEqualExpense(t, "carol", 150, "bob", "carol", "alice")

	balances, err := env.settlements.ComputeBalances(ctx, "alice", env.group.ID)
	require.NoError(t, err)
	require.Equal(t, money.Cents(0), sumBalances(balances))

	plan, err := env.settlements.ProposePlan(ctx, "alice", env.group.ID)
	require.NoError(t, err)
	require.NotEmpty(t, plan)

	// Applying the plan must zero every balance.
	for _, s := range plan {
		assert.Equal(t, models.SettlementPending, s.Status)
		assert.NotEmpty(t, s.ID)
		balances[s.FromUserID] += s.AmountCents
		balances[s.ToUserID] -= s.AmountCents
	}
	for id, b := range balances {
		assert.Equal(t, money.Cents(0), b, "member %s", id)
	}

	// n members need at most n-1 transfers.
	assert.LessOrEqual(t, len(plan), len(env.group.Members)-1)
}

func TestSettlementServiceProposePlanSettledGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	plan, err := env.settlements.ProposePlan(ctx, "alice", env.group.ID)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestSettlementServiceRecordValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   SettlementInput
		wantErr error
	}{
		{
			name:    "zero amount",
			input:   SettlementInput{FromUserID: "bob", ToUserID: "alice", AmountCents: 0},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "self settlement",
			input:   SettlementInput{FromUserID: "bob", ToUserID: "bob", AmountCents: 100},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "non-member party",
			input:   SettlementInput{FromUserID: "mallory", ToUserID: "alice", AmountCents: 100},
			wantErr: ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.GroupID = env.group.ID
			_, err := env.settlements.Record(ctx, "alice", tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSettlementServiceConfirm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addEqualExpense(t, "alice", 600, "alice", "bob", "carol")

	settlement, err := env.settlements.Record(ctx, "bob", SettlementInput{
		GroupID:     env.group.ID,
		FromUserID:  "bob",
		ToUserID:    "alice",
		AmountCents: 200,
		Method:      "cash",
	})
	require.NoError(t, err)

	t.Run("pending settlements do not move balances", func(t *testing.T) {
		balances, err := env.settlements.ComputeBalances(ctx, "alice", env.group.ID)
		require.NoError(t, err)
		assert.Equal(t, money.Cents(400), balances["alice"])
		assert.Equal(t, money.Cents(-200), balances["bob"])
	})

	t.Run("confirm applies the transfer once", func(t *testing.T) {
		confirmed, err := env.settlements.Confirm(ctx, "alice", settlement.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SettlementConfirmed, confirmed.Status)
		assert.NotZero(t, confirmed.ConfirmedAt)

		balances, err := env.settlements.ComputeBalances(ctx, "alice", env.group.ID)
		require.NoError(t, err)
		assert.Equal(t, money.Cents(200), balances["alice"])
		assert.Equal(t, money.Cents(0), balances["bob"])
	})

	t.Run("second confirm is a no-op", func(t *testing.T) {
		again, err := env.settlements.Confirm(ctx, "bob", settlement.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SettlementConfirmed, again.Status)

		balances, err := env.settlements.ComputeBalances(ctx, "alice", env.group.ID)
		require.NoError(t, err)
		assert.Equal(t, money.Cents(200), balances["alice"])
		assert.Equal(t, money.Cents(0), balances["bob"])
	})
}

func TestSettlementServiceCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addEqualExpense(t, "alice", 600, "alice", "bob", "carol")

	record := func(t *testing.T) *models.Settlement {
		s, err := env.settlements.Record(ctx, "bob", SettlementInput{
			GroupID:     env.group.ID,
			FromUserID:  "bob",
			ToUserID:    "alice",
			AmountCents: 200,
		})
		require.NoError(t, err)
		return s
	}

	t.Run("cancelling a pending settlement leaves balances unchanged", func(t *testing.T) {
		before, err := env.settlements.ComputeBalances(ctx, "alice", env.group.ID)
		require.NoError(t, err)

		s := record(t)
		require.NoError(t, env.settlements.Cancel(ctx, "bob", s.ID))

		after, err := env.settlements.ComputeBalances(ctx, "alice", env.group.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("cancelling a confirmed settlement fails", func(t *testing.T) {
		s := record(t)
		_, err := env.settlements.Confirm(ctx, "alice", s.ID)
		require.NoError(t, err)

		err = env.settlements.Cancel(ctx, "bob", s.ID)
		assert.ErrorIs(t, err, ErrInvalidState)

		// Still there, still confirmed.
		kept, err := env.store.GetSettlement(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SettlementConfirmed, kept.Status)
	})
}

// confirmOnReadStore confirms the target settlement right after the first
// read returns it pending, reproducing a confirmation that lands between
// Cancel's permission check and its lock acquisition.
type confirmOnReadStore struct {
	storage.Store
	settlementID string
	confirm      sync.Once
}

func (s *confirmOnReadStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := s.Store.GetSettlement(ctx, settlementID)
	if err != nil || settlementID != s.settlementID {
		return settlement, err
	}
	s.confirm.Do(func() {
		if _, cErr := s.Store.ConfirmSettlement(ctx, settlementID, time.Now().Unix()); cErr != nil {
			err = cErr
		}
	})
	return settlement, err
}

func TestSettlementServiceCancelRacingConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addEqualExpense(t, "alice", 600, "alice", "bob", "carol")
	s, err := env.settlements.Record(ctx, "bob", SettlementInput{
		GroupID:     env.group.ID,
		FromUserID:  "bob",
		ToUserID:    "alice",
		AmountCents: 200,
	})
	require.NoError(t, err)

	racing := NewSettlementService(
		&confirmOnReadStore{Store: env.store, settlementID: s.ID},
		env.ledger, nil,
	)

	// Cancel's first read sees the settlement pending, but by the time it
	// holds the group lock the row is confirmed. The cancel must refuse
	// rather than erase confirmed history.
	err = racing.Cancel(ctx, "bob", s.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	kept, err := env.store.GetSettlement(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementConfirmed, kept.Status)

	balances, err := env.settlements.ComputeBalances(ctx, "alice", env.group.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(200), balances["alice"])
	assert.Equal(t, money.Cents(0), balances["bob"])
}
