package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

// CreateSettlements persists a batch of settlements in one transaction.
func (s *SQLiteStore) CreateSettlements(ctx context.Context, settlements []*models.Settlement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, settlement := range settlements {
		if settlement.ID == "" {
			settlement.ID = uuid.New().String()
		}
		if settlement.CreatedAt == 0 {
			settlement.CreatedAt = time.Now().Unix()
		}

		var note interface{} = nil
		if settlement.Note != "" {
			note = settlement.Note
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount_cents, method, status, note, created_by, created_at, confirmed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			settlement.ID, settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
			int64(settlement.AmountCents), settlement.Method, string(settlement.Status),
			note, settlement.CreatedBy, settlement.CreatedAt, settlement.ConfirmedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.db.QueryRowContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount_cents, method, status, note, created_by, created_at, confirmed_at
		 FROM settlements WHERE id = ?`,
		settlementID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var amount int64
	var status string
	var note sql.NullString

	err := row.Scan(&settlement.ID, &settlement.GroupID, &settlement.FromUserID, &settlement.ToUserID,
		&amount, &settlement.Method, &status, &note, &settlement.CreatedBy,
		&settlement.CreatedAt, &settlement.ConfirmedAt)
	if err != nil {
		return nil, err
	}

	settlement.AmountCents = money.Cents(amount)
	settlement.Status = models.SettlementStatus(status)
	if note.Valid {
		settlement.Note = note.String
	}
	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group, newest first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, from_user_id, to_user_id, amount_cents, method, status, note, created_by, created_at, confirmed_at
		 FROM settlements WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// ConfirmSettlement flips a pending settlement to confirmed. The WHERE
// clause makes the flip a no-op for anything not pending, which is what
// keeps confirmation idempotent at the storage level.
func (s *SQLiteStore) ConfirmSettlement(ctx context.Context, settlementID string, confirmedAt int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET status = ?, confirmed_at = ? WHERE id = ? AND status = ?",
		string(models.SettlementConfirmed), confirmedAt, settlementID, string(models.SettlementPending),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read confirm result: %w", err)
	}
	return n, nil
}

// CancelSettlement removes a settlement only while it is still pending.
// The WHERE clause mirrors ConfirmSettlement: a confirmed row is immutable
// history and survives the delete no matter how the call interleaves with
// a confirmation.
func (s *SQLiteStore) CancelSettlement(ctx context.Context, settlementID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM settlements WHERE id = ? AND status = ?",
		settlementID, string(models.SettlementPending),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read cancel result: %w", err)
	}
	return n, nil
}
