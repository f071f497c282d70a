package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/observability"
	"github.com/splitledger/splitledger/internal/storage"
)

// SettlementInput is a request to record a settlement directly, outside a
// proposed plan.
type SettlementInput struct {
	GroupID     string
	FromUserID  string
	ToUserID    string
	AmountCents money.Cents
	Method      string
	Note        string
}

// SettlementService owns the settlement ledger: balance aggregation,
// settlement plan proposals, and the pending -> confirmed lifecycle.
type SettlementService struct {
	store   storage.Store
	ledger  *Ledger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewSettlementService creates a new SettlementService. metrics may be nil.
func NewSettlementService(store storage.Store, ledger *Ledger, metrics *observability.Metrics) *SettlementService {
	return &SettlementService{store: store, ledger: ledger, metrics: metrics, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *SettlementService) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ComputeBalances aggregates the group's expenses and confirmed settlements
// into one signed balance per member. Results are cached until the next
// balance-affecting write; concurrent calls for one group share a single
// computation.
func (s *SettlementService) ComputeBalances(ctx context.Context, actorID, groupID string) (map[string]money.Cents, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ErrForbidden, actorID, groupID)
	}
	return s.ledger.Balances(groupID, func() (map[string]money.Cents, error) {
		return s.aggregate(ctx, group)
	})
}

func (s *SettlementService) aggregate(ctx context.Context, group *models.Group) (map[string]money.Cents, error) {
	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]string, len(group.Members))
	for i, m := range group.Members {
		memberIDs[i] = m.UserID
	}
	balances, err := calculator.Aggregate(memberIDs, expenses, settlements)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BalanceRecomputes.Inc()
	}
	return balances, nil
}

// ProposePlan computes current balances, derives a minimal-transfer plan,
// and persists it as pending settlements. The whole sequence runs under the
// group lock so the plan matches the balances it was derived from.
func (s *SettlementService) ProposePlan(ctx context.Context, actorID, groupID string) ([]*models.Settlement, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ErrForbidden, actorID, groupID)
	}

	unlock := s.ledger.Lock(groupID)
	defer unlock()

	balances, err := s.aggregate(ctx, group)
	if err != nil {
		return nil, err
	}
	transfers, err := calculator.Plan(balances)
	if err != nil {
		return nil, err
	}
	if len(transfers) == 0 {
		return nil, nil
	}

	settlements := make([]*models.Settlement, len(transfers))
	for i, t := range transfers {
		settlements[i] = &models.Settlement{
			GroupID:     groupID,
			FromUserID:  t.FromUserID,
			ToUserID:    t.ToUserID,
			AmountCents: t.AmountCents,
			Method:      "unspecified",
			Status:      models.SettlementPending,
			CreatedBy:   actorID,
			CreatedAt:   s.now().Unix(),
		}
	}
	if err := s.store.CreateSettlements(ctx, settlements); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.PlansProposed.Inc()
	}

	slog.Info("settlement plan proposed",
		"group_id", groupID,
		"transfers", len(settlements),
		"proposed_by", actorID,
	)
	return settlements, nil
}

// Record persists a user-entered settlement as pending.
func (s *SettlementService) Record(ctx context.Context, actorID string, input SettlementInput) (*models.Settlement, error) {
	group, err := s.store.GetGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ErrForbidden, actorID, input.GroupID)
	}
	if input.AmountCents < 1 {
		return nil, fmt.Errorf("%w: settlement amount must be at least 1 cent", ErrInvalidInput)
	}
	if input.FromUserID == input.ToUserID {
		return nil, fmt.Errorf("%w: debtor and creditor must differ", ErrInvalidInput)
	}
	if !group.IsMember(input.FromUserID) || !group.IsMember(input.ToUserID) {
		return nil, fmt.Errorf("%w: both parties must be members of group %s", ErrInvalidInput, input.GroupID)
	}

	settlement := &models.Settlement{
		GroupID:     input.GroupID,
		FromUserID:  input.FromUserID,
		ToUserID:    input.ToUserID,
		AmountCents: input.AmountCents,
		Method:      input.Method,
		Status:      models.SettlementPending,
		Note:        input.Note,
		CreatedBy:   actorID,
		CreatedAt:   s.now().Unix(),
	}
	if settlement.Method == "" {
		settlement.Method = "unspecified"
	}

	unlock := s.ledger.Lock(input.GroupID)
	defer unlock()

	if err := s.store.CreateSettlements(ctx, []*models.Settlement{settlement}); err != nil {
		return nil, err
	}
	// Pending settlements don't move balances, so no invalidation here.

	slog.Info("settlement recorded", "settlement_id", settlement.ID, "group_id", settlement.GroupID)
	return settlement, nil
}

// Confirm transitions a settlement from pending to confirmed. Confirming an
// already-confirmed settlement is a no-op that returns it unchanged, so
// retries and duplicate webhook-style calls never double-apply a transfer.
func (s *SettlementService) Confirm(ctx context.Context, actorID, settlementID string) (*models.Settlement, error) {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(ctx, settlement.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ErrForbidden, actorID, settlement.GroupID)
	}

	unlock := s.ledger.Lock(settlement.GroupID)
	defer unlock()

	if settlement.Status == models.SettlementConfirmed {
		return settlement, nil
	}

	changed, err := s.store.ConfirmSettlement(ctx, settlementID, s.now().Unix())
	if err != nil {
		return nil, err
	}
	if changed == 0 {
		// Lost a race outside our lock scope (e.g. a second process);
		// re-read and return whatever state won.
		return s.store.GetSettlement(ctx, settlementID)
	}
	s.ledger.Invalidate(settlement.GroupID)
	if s.metrics != nil {
		s.metrics.SettlementsConfirmed.Inc()
	}

	confirmed, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	slog.Info("settlement confirmed",
		"settlement_id", settlementID,
		"group_id", confirmed.GroupID,
		"amount_cents", int64(confirmed.AmountCents),
	)
	return confirmed, nil
}

// Cancel removes a pending settlement. Confirmed settlements are immutable
// history and cannot be cancelled, only reversed by recording an explicit
// opposite settlement.
func (s *SettlementService) Cancel(ctx context.Context, actorID, settlementID string) error {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	group, err := s.store.GetGroup(ctx, settlement.GroupID)
	if err != nil {
		return err
	}
	if !group.IsMember(actorID) {
		return fmt.Errorf("%w: user %s is not a member of group %s", ErrForbidden, actorID, settlement.GroupID)
	}

	unlock := s.ledger.Lock(settlement.GroupID)
	defer unlock()

	// Re-read under the lock: a confirmation may have landed between the
	// membership check and acquiring the lock.
	settlement, err = s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	if settlement.Status == models.SettlementConfirmed {
		return fmt.Errorf("%w: settlement %s is already confirmed", ErrInvalidState, settlementID)
	}
	changed, err := s.store.CancelSettlement(ctx, settlementID)
	if err != nil {
		return err
	}
	if changed == 0 {
		// Lost a race outside our lock scope (e.g. a second process
		// confirmed it); confirmed history stays.
		return fmt.Errorf("%w: settlement %s is already confirmed", ErrInvalidState, settlementID)
	}

	slog.Info("settlement cancelled", "settlement_id", settlementID, "group_id", settlement.GroupID)
	return nil
}

// ListByGroup retrieves all settlements in a group for a member.
func (s *SettlementService) ListByGroup(ctx context.Context, actorID, groupID string) ([]*models.Settlement, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(actorID) {
		return nil, fmt.Errorf("%w: user %s is not a member of group %s", ErrForbidden, actorID, groupID)
	}
	return s.store.ListSettlementsByGroup(ctx, groupID)
}
