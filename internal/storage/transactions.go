package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

// CreateTransactionParams carries the fields for a new transaction row.
// AmountCents is the already-converted positive minor-unit magnitude.
type CreateTransactionParams struct {
	UserID          int64
	CategoryID      int64
	AmountCents     int64
	Kind            core.TransactionKind
	Description     *string
	TransactionDate time.Time
}

// CreateTransaction inserts a transaction and returns the materialized row.
func (s *Store) CreateTransaction(ctx context.Context, p CreateTransactionParams) (*core.Transaction, error) {
	if !s.Available() {
		return nil, core.ErrStorageUnavailable
	}

	ts := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, category_id, amount, type, description, transaction_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.CategoryID, p.AmountCents, string(p.Kind), p.Description,
		normalizeTime(p.TransactionDate), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("transaction insert id: %w", err)
	}
	return s.GetTransactionByID(ctx, id, p.UserID)
}

// GetTransactionByID returns the transaction matching both id and
// owner, or nil when no such row is visible to this user.
func (s *Store) GetTransactionByID(ctx context.Context, id, userID int64) (*core.Transaction, error) {
	if !s.Available() {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, category_id, amount, type, description, transaction_date, created_at, updated_at
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID)

	var t core.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.AmountCents, &t.Kind, &t.Description,
		&t.TransactionDate, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// ListTransactions returns the user's transactions matching the filter,
// newest event first. Filter fields combine with AND; date bounds are
// inclusive.
func (s *Store) ListTransactions(ctx context.Context, userID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	if !s.Available() {
		return []core.Transaction{}, nil
	}

	conditions := []string{"user_id = ?"}
	args := []any{userID}
	if f.CategoryID != nil {
		conditions = append(conditions, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Kind != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*f.Kind))
	}
	if f.StartDate != nil {
		conditions = append(conditions, "transaction_date >= ?")
		args = append(args, normalizeTime(*f.StartDate))
	}
	if f.EndDate != nil {
		conditions = append(conditions, "transaction_date <= ?")
		args = append(args, normalizeTime(*f.EndDate))
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, category_id, amount, type, description, transaction_date, created_at, updated_at
		FROM transactions WHERE %s ORDER BY transaction_date DESC`, strings.Join(conditions, " AND "))
	if f.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *f.Limit)
		if f.Offset != nil {
			query += fmt.Sprintf(" OFFSET %d", *f.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []core.Transaction{}
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.AmountCents, &t.Kind, &t.Description,
			&t.TransactionDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// UpdateTransaction mutates only the row matching both id and owner and
// refreshes its update timestamp. A missing or foreign-owned row is a
// silent no-op.
func (s *Store) UpdateTransaction(ctx context.Context, id, userID int64, patch core.TransactionPatch) error {
	if !s.Available() {
		return core.ErrStorageUnavailable
	}

	set := []string{"updated_at = ?"}
	args := []any{now()}
	if patch.CategoryID != nil {
		set = append(set, "category_id = ?")
		args = append(args, *patch.CategoryID)
	}
	if patch.AmountCents != nil {
		set = append(set, "amount = ?")
		args = append(args, *patch.AmountCents)
	}
	if patch.Kind != nil {
		set = append(set, "type = ?")
		args = append(args, string(*patch.Kind))
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.TransactionDate != nil {
		set = append(set, "transaction_date = ?")
		args = append(args, normalizeTime(*patch.TransactionDate))
	}
	args = append(args, id, userID)

	query := fmt.Sprintf("UPDATE transactions SET %s WHERE id = ? AND user_id = ?", strings.Join(set, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes the row matching both id and owner.
func (s *Store) DeleteTransaction(ctx context.Context, id, userID int64) error {
	if !s.Available() {
		return core.ErrStorageUnavailable
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}
