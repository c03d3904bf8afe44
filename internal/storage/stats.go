package storage

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// FinancialSummary sums the user's transactions per kind over an
// optional inclusive event-time window. All figures are cents; kinds
// with no matching rows total zero.
func (s *Store) FinancialSummary(ctx context.Context, userID int64, window core.DateWindow) (core.FinancialSummary, error) {
	var summary core.FinancialSummary
	if !s.Available() {
		return summary, nil
	}

	conditions := []string{"user_id = ?"}
	args := []any{userID}
	if window.Start != nil {
		conditions = append(conditions, "transaction_date >= ?")
		args = append(args, normalizeTime(*window.Start))
	}
	if window.End != nil {
		conditions = append(conditions, "transaction_date <= ?")
		args = append(args, normalizeTime(*window.End))
	}

	query := fmt.Sprintf(`
		SELECT type, SUM(amount) FROM transactions
		WHERE %s GROUP BY type`, strings.Join(conditions, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return summary, fmt.Errorf("financial summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var total int64
		if err := rows.Scan(&kind, &total); err != nil {
			return summary, fmt.Errorf("scan summary row: %w", err)
		}
		switch core.TransactionKind(kind) {
		case core.Income:
			summary.TotalIncomeCents = total
		case core.Expense:
			summary.TotalExpenseCents = total
		}
	}
	if err := rows.Err(); err != nil {
		return summary, err
	}

	summary.BalanceCents = summary.TotalIncomeCents - summary.TotalExpenseCents
	return summary, nil
}

// CategoryStats groups the user's transactions of one kind by category
// over an optional inclusive window. Only categories with at least one
// matching transaction appear; the inner join drops transactions whose
// category was deleted.
func (s *Store) CategoryStats(ctx context.Context, userID int64, kind core.TransactionKind, window core.DateWindow) ([]core.CategoryStat, error) {
	if !s.Available() {
		return []core.CategoryStat{}, nil
	}

	conditions := []string{"t.user_id = ?", "t.type = ?"}
	args := []any{userID, string(kind)}
	if window.Start != nil {
		conditions = append(conditions, "t.transaction_date >= ?")
		args = append(args, normalizeTime(*window.Start))
	}
	if window.End != nil {
		conditions = append(conditions, "t.transaction_date <= ?")
		args = append(args, normalizeTime(*window.End))
	}

	query := fmt.Sprintf(`
		SELECT t.category_id, c.name, SUM(t.amount), COUNT(*)
		FROM transactions t
		INNER JOIN categories c ON t.category_id = c.id
		WHERE %s
		GROUP BY t.category_id, c.name`, strings.Join(conditions, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	stats := []core.CategoryStat{}
	for rows.Next() {
		var st core.CategoryStat
		if err := rows.Scan(&st.CategoryID, &st.CategoryName, &st.TotalCents, &st.Count); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
