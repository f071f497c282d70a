// Package service implements the application services that sit between the
// HTTP handlers and the ledger engine: membership and role checks, per-group
// serialization, and the glue from requests to calculator calls and storage.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/observability"
	"github.com/splitledger/splitledger/internal/storage"
)

// ExpenseInput is a request to create or replace an expense.
type ExpenseInput struct {
	GroupID      string
	PayerID      string
	Description  string
	AmountCents  money.Cents
	SplitType    models.SplitType
	Participants []calculator.ParticipantInput
}

// ExpenseService creates, updates, and deletes expenses, running the split
// calculator on every write so a stored expense always carries shares that
// sum to its amount.
type ExpenseService struct {
	store   storage.Store
	ledger  *Ledger
	metrics *observability.Metrics
}

// NewExpenseService creates a new ExpenseService. metrics may be nil.
func NewExpenseService(store storage.Store, ledger *Ledger, metrics *observability.Metrics) *ExpenseService {
	return &ExpenseService{store: store, ledger: ledger, metrics: metrics}
}

// ComputeSplit runs the splitter without persisting anything, for preview
// endpoints and client-side validation.
func (s *ExpenseService) ComputeSplit(amount money.Cents, splitType models.SplitType, participants []calculator.ParticipantInput) ([]models.ExpenseParticipant, error) {
	shares, err := calculator.Split(amount, splitType, participants)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SplitsComputed.WithLabelValues(string(splitType)).Inc()
	}
	return shares, nil
}

// Create validates the input against the group's membership, splits the
// amount, and persists the expense.
func (s *ExpenseService) Create(ctx context.Context, actorID string, input ExpenseInput) (*models.Expense, error) {
	group, err := s.store.GetGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(group, actorID, input); err != nil {
		return nil, err
	}

	shares, err := s.ComputeSplit(input.AmountCents, input.SplitType, input.Participants)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:      input.GroupID,
		PayerID:      input.PayerID,
		Description:  input.Description,
		AmountCents:  input.AmountCents,
		SplitType:    input.SplitType,
		Participants: shares,
		CreatedBy:    actorID,
	}

	unlock := s.ledger.Lock(input.GroupID)
	defer unlock()

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}
	s.ledger.Invalidate(input.GroupID)

	slog.Info("expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount_cents", int64(expense.AmountCents),
		"split_type", expense.SplitType,
	)
	return expense, nil
}

// Get retrieves an expense, requiring the actor to be a member of its group.
func (s *ExpenseService) Get(ctx context.Context, actorID, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, expense.GroupID, actorID); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListByGroup retrieves all expenses in a group for a member.
func (s *ExpenseService) ListByGroup(ctx context.Context, actorID, groupID string) ([]*models.Expense, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// Update re-splits and replaces an existing expense. The group an expense
// belongs to never changes.
func (s *ExpenseService) Update(ctx context.Context, actorID, expenseID string, input ExpenseInput) (*models.Expense, error) {
	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	input.GroupID = existing.GroupID

	group, err := s.store.GetGroup(ctx, existing.GroupID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(group, actorID, input); err != nil {
		return nil, err
	}

	shares, err := s.ComputeSplit(input.AmountCents, input.SplitType, input.Participants)
	if err != nil {
		return nil, err
	}

	updated := &models.Expense{
		ID:           existing.ID,
		GroupID:      existing.GroupID,
		PayerID:      input.PayerID,
		Description:  input.Description,
		AmountCents:  input.AmountCents,
		SplitType:    input.SplitType,
		Participants: shares,
		CreatedBy:    existing.CreatedBy,
		CreatedAt:    existing.CreatedAt,
	}

	unlock := s.ledger.Lock(existing.GroupID)
	defer unlock()

	if err := s.store.UpdateExpense(ctx, updated); err != nil {
		return nil, err
	}
	s.ledger.Invalidate(existing.GroupID)

	slog.Info("expense updated", "expense_id", updated.ID, "group_id", updated.GroupID)
	return updated, nil
}

// Delete removes an expense, erasing its contribution from all future
// aggregations.
func (s *ExpenseService) Delete(ctx context.Context, actorID, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, expense.GroupID, actorID); err != nil {
		return err
	}

	unlock := s.ledger.Lock(expense.GroupID)
	defer unlock()

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}
	s.ledger.Invalidate(expense.GroupID)

	slog.Info("expense deleted", "expense_id", expenseID, "group_id", expense.GroupID)
	return nil
}

func (s *ExpenseService) requireMember(ctx context.Context, groupID, userID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsMember(userID) {
		return fmt.Errorf("%w: user %s is not a member of group %s", ErrForbidden, userID, groupID)
	}
	return nil
}

func (s *ExpenseService) validateInput(group *models.Group, actorID string, input ExpenseInput) error {
	if !group.IsMember(actorID) {
		return fmt.Errorf("%w: user %s is not a member of group %s", ErrForbidden, actorID, group.ID)
	}
	if !group.IsMember(input.PayerID) {
		return fmt.Errorf("%w: payer %s is not a member of group %s", ErrInvalidInput, input.PayerID, group.ID)
	}
	for _, p := range input.Participants {
		if !group.IsMember(p.UserID) {
			return fmt.Errorf("%w: participant %s is not a member of group %s", ErrInvalidInput, p.UserID, group.ID)
		}
	}
	return nil
}
