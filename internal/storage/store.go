// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/splitledger/splitledger/internal/models"
)

// Store defines the interface for ledger storage operations. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Implementations return storage.ErrNotFound (wrapped) when a referenced
// entity does not exist.
type Store interface {
	// CreateUser persists a new user. The user.ID field is populated by
	// the store if empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no
	// such user exists, so callers can distinguish "absent" from failure.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) when absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateGroup persists a new group with its initial members.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its full member list.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser retrieves every group the user is a member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMembers adds members to an existing group. Existing
	// memberships are left untouched.
	AddGroupMembers(ctx context.Context, groupID string, members []models.Member) error

	// DeleteGroup removes a group and, via cascade, its expenses and
	// settlements.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists an expense together with its participant
	// shares in one transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with participants in creation order.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces an expense's fields and participant shares in
	// one transaction.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense and its participant rows.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup retrieves all expenses for a group, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// CreateSettlements persists a batch of settlements atomically. Used
	// both for single user-recorded settlements and whole proposed plans.
	CreateSettlements(ctx context.Context, settlements []*models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup retrieves all settlements for a group, newest
	// first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// ConfirmSettlement flips a pending settlement to confirmed and stamps
	// confirmedAt. Returns the number of rows changed: 0 means the
	// settlement was not pending (already confirmed, or absent).
	ConfirmSettlement(ctx context.Context, settlementID string, confirmedAt int64) (int64, error)

	// CancelSettlement removes a settlement only while it is still
	// pending. Returns the number of rows changed: 0 means the settlement
	// was not pending (already confirmed, or absent), so confirmed
	// history can never be deleted.
	CancelSettlement(ctx context.Context, settlementID string) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
