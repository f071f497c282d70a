package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "splitledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedGroup(t *testing.T, store *SQLiteStore) *models.Group {
	t.Helper()
	group := &models.Group{
		Name:      "Roommates",
		Currency:  "USD",
		CreatedBy: "alice",
		Members: []models.Member{
			{UserID: "alice", Role: models.RoleOwner},
			{UserID: "bob", Role: models.RoleMember},
			{UserID: "carol", Role: models.RoleMember},
		},
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and stores members", func(t *testing.T) {
		group := seedGroup(t, store)
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		retrieved, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if retrieved.Currency != "USD" {
			t.Errorf("Currency = %q, want USD", retrieved.Currency)
		}
		if len(retrieved.Members) != 3 {
			t.Fatalf("got %d members, want 3", len(retrieved.Members))
		}
		if retrieved.MemberRole("alice") != models.RoleOwner {
			t.Errorf("alice role = %q, want owner", retrieved.MemberRole("alice"))
		}
	})

	t.Run("GetGroup returns ErrNotFound for missing group", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroup error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Expense round-trips with participants in order", func(t *testing.T) {
		group := seedGroup(t, store)
		expense := &models.Expense{
			GroupID:     group.ID,
			PayerID:     "alice",
			Description: "Groceries",
			AmountCents: 1001,
			SplitType:   models.SplitEqual,
			CreatedBy:   "alice",
			Participants: []models.ExpenseParticipant{
				{UserID: "carol", ShareCents: 334},
				{UserID: "alice", ShareCents: 334},
				{UserID: "bob", ShareCents: 333},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		retrieved, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if retrieved.AmountCents != 1001 {
			t.Errorf("AmountCents = %d, want 1001", retrieved.AmountCents)
		}
		if retrieved.SplitType != models.SplitEqual {
			t.Errorf("SplitType = %q, want equal", retrieved.SplitType)
		}
		// Participant order must survive storage: remainder distribution
		// depends on it.
		wantOrder := []string{"carol", "alice", "bob"}
		for i, p := range retrieved.Participants {
			if p.UserID != wantOrder[i] {
				t.Errorf("participant %d = %q, want %q", i, p.UserID, wantOrder[i])
			}
		}
	})

	t.Run("UpdateExpense replaces participants", func(t *testing.T) {
		group := seedGroup(t, store)
		expense := &models.Expense{
			GroupID:     group.ID,
			PayerID:     "alice",
			Description: "Dinner",
			AmountCents: 600,
			SplitType:   models.SplitEqual,
			CreatedBy:   "alice",
			Participants: []models.ExpenseParticipant{
				{UserID: "alice", ShareCents: 300},
				{UserID: "bob", ShareCents: 300},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expense.AmountCents = 900
		expense.Participants = []models.ExpenseParticipant{
			{UserID: "alice", ShareCents: 300},
			{UserID: "bob", ShareCents: 300},
			{UserID: "carol", ShareCents: 300},
		}
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		retrieved, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if retrieved.AmountCents != 900 {
			t.Errorf("AmountCents = %d, want 900", retrieved.AmountCents)
		}
		if len(retrieved.Participants) != 3 {
			t.Errorf("got %d participants, want 3", len(retrieved.Participants))
		}
	})

	t.Run("DeleteExpense removes it from group listing", func(t *testing.T) {
		group := seedGroup(t, store)
		expense := &models.Expense{
			GroupID:     group.ID,
			PayerID:     "alice",
			AmountCents: 100,
			SplitType:   models.SplitEqual,
			Participants: []models.ExpenseParticipant{
				{UserID: "alice", ShareCents: 100},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("got %d expenses after delete, want 0", len(expenses))
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetExpense after delete = %v, want ErrNotFound", err)
		}
	})

	t.Run("ConfirmSettlement flips pending exactly once", func(t *testing.T) {
		group := seedGroup(t, store)
		settlement := &models.Settlement{
			GroupID:     group.ID,
			FromUserID:  "bob",
			ToUserID:    "alice",
			AmountCents: 250,
			Method:      "cash",
			Status:      models.SettlementPending,
			CreatedBy:   "bob",
		}
		if err := store.CreateSettlements(ctx, []*models.Settlement{settlement}); err != nil {
			t.Fatalf("CreateSettlements failed: %v", err)
		}

		n, err := store.ConfirmSettlement(ctx, settlement.ID, 1700000000)
		if err != nil {
			t.Fatalf("ConfirmSettlement failed: %v", err)
		}
		if n != 1 {
			t.Errorf("first confirm affected %d rows, want 1", n)
		}

		// Second confirm hits no pending row.
		n, err = store.ConfirmSettlement(ctx, settlement.ID, 1700000001)
		if err != nil {
			t.Fatalf("ConfirmSettlement (repeat) failed: %v", err)
		}
		if n != 0 {
			t.Errorf("repeat confirm affected %d rows, want 0", n)
		}

		retrieved, err := store.GetSettlement(ctx, settlement.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if retrieved.Status != models.SettlementConfirmed {
			t.Errorf("Status = %q, want confirmed", retrieved.Status)
		}
		if retrieved.ConfirmedAt != 1700000000 {
			t.Errorf("ConfirmedAt = %d, want first confirmation timestamp", retrieved.ConfirmedAt)
		}
	})

	t.Run("CancelSettlement only removes pending rows", func(t *testing.T) {
		group := seedGroup(t, store)
		settlement := &models.Settlement{
			GroupID:     group.ID,
			FromUserID:  "bob",
			ToUserID:    "alice",
			AmountCents: 150,
			Method:      "cash",
			Status:      models.SettlementPending,
			CreatedBy:   "bob",
		}
		if err := store.CreateSettlements(ctx, []*models.Settlement{settlement}); err != nil {
			t.Fatalf("CreateSettlements failed: %v", err)
		}
		if _, err := store.ConfirmSettlement(ctx, settlement.ID, 1700000000); err != nil {
			t.Fatalf("ConfirmSettlement failed: %v", err)
		}

		n, err := store.CancelSettlement(ctx, settlement.ID)
		if err != nil {
			t.Fatalf("CancelSettlement failed: %v", err)
		}
		if n != 0 {
			t.Errorf("cancel of a confirmed settlement affected %d rows, want 0", n)
		}
		kept, err := store.GetSettlement(ctx, settlement.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if kept.Status != models.SettlementConfirmed {
			t.Errorf("Status = %q, want confirmed to survive the cancel", kept.Status)
		}

		pending := &models.Settlement{
			GroupID:     group.ID,
			FromUserID:  "alice",
			ToUserID:    "bob",
			AmountCents: 75,
			Method:      "cash",
			Status:      models.SettlementPending,
			CreatedBy:   "alice",
		}
		if err := store.CreateSettlements(ctx, []*models.Settlement{pending}); err != nil {
			t.Fatalf("CreateSettlements failed: %v", err)
		}
		n, err = store.CancelSettlement(ctx, pending.ID)
		if err != nil {
			t.Fatalf("CancelSettlement failed: %v", err)
		}
		if n != 1 {
			t.Errorf("cancel of a pending settlement affected %d rows, want 1", n)
		}
		if _, err := store.GetSettlement(ctx, pending.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetSettlement after cancel = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteGroup cascades to expenses and settlements", func(t *testing.T) {
		group := seedGroup(t, store)
		expense := &models.Expense{
			GroupID:     group.ID,
			PayerID:     "alice",
			AmountCents: 100,
			SplitType:   models.SplitEqual,
			Participants: []models.ExpenseParticipant{
				{UserID: "alice", ShareCents: 100},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expense survived group delete: %v", err)
		}
	})

	t.Run("Users round-trip and absent lookups return nil", func(t *testing.T) {
		user := models.NewUser("dana@example.com", "Dana", "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		byEmail, err := store.GetUserByEmail(ctx, "dana@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail == nil || byEmail.ID != user.ID {
			t.Errorf("GetUserByEmail = %+v, want user %s", byEmail, user.ID)
		}
		missing, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail (missing) failed: %v", err)
		}
		if missing != nil {
			t.Errorf("expected nil for missing user, got %+v", missing)
		}
	})
}
