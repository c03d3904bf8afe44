package storage

import (
	"context"
	"testing"

	"fintrack/internal/core"
)

func TestFinancialSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	food := mustCreateCategory(t, s, 1, "Food", core.Expense)
	salary := mustCreateCategory(t, s, 1, "Salary", core.Income)

	mustCreateTransaction(t, s, 1, salary.ID, 300000, core.Income, day(2025, 1, 1))
	mustCreateTransaction(t, s, 1, food.ID, 5000, core.Expense, day(2025, 1, 10))
	mustCreateTransaction(t, s, 1, food.ID, 7550, core.Expense, day(2025, 2, 10))
	mustCreateTransaction(t, s, 2, food.ID, 99999, core.Expense, day(2025, 1, 10)) // other tenant

	t.Run("unbounded window", func(t *testing.T) {
		sum, err := s.FinancialSummary(ctx, 1, core.DateWindow{})
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		if sum.TotalIncomeCents != 300000 || sum.TotalExpenseCents != 12550 {
			t.Fatalf("unexpected totals: %+v", sum)
		}
		if sum.BalanceCents != sum.TotalIncomeCents-sum.TotalExpenseCents {
			t.Fatalf("balance invariant violated: %+v", sum)
		}
	})

	t.Run("bounded window", func(t *testing.T) {
		start := day(2025, 1, 1)
		end := day(2025, 1, 31)
		sum, err := s.FinancialSummary(ctx, 1, core.DateWindow{Start: &start, End: &end})
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		if sum.TotalIncomeCents != 300000 || sum.TotalExpenseCents != 5000 || sum.BalanceCents != 295000 {
			t.Fatalf("unexpected windowed totals: %+v", sum)
		}
	})

	t.Run("kind with no rows totals zero", func(t *testing.T) {
		sum, err := s.FinancialSummary(ctx, 3, core.DateWindow{})
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		if sum.TotalIncomeCents != 0 || sum.TotalExpenseCents != 0 || sum.BalanceCents != 0 {
			t.Fatalf("expected zero summary for empty user, got %+v", sum)
		}
	})
}

func TestCategoryStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	food := mustCreateCategory(t, s, 1, "Food", core.Expense)
	transport := mustCreateCategory(t, s, 1, "Transport", core.Expense)
	idle := mustCreateCategory(t, s, 1, "Idle", core.Expense)
	_ = idle

	mustCreateTransaction(t, s, 1, food.ID, 1000, core.Expense, day(2025, 1, 5))
	mustCreateTransaction(t, s, 1, food.ID, 2000, core.Expense, day(2025, 1, 6))
	mustCreateTransaction(t, s, 1, transport.ID, 500, core.Expense, day(2025, 1, 7))

	stats, err := s.CategoryStats(ctx, 1, core.Expense, core.DateWindow{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("categories without transactions must be omitted, got %d entries", len(stats))
	}

	byName := map[string]core.CategoryStat{}
	var total int64
	for _, st := range stats {
		byName[st.CategoryName] = st
		total += st.TotalCents
	}
	if st := byName["Food"]; st.TotalCents != 3000 || st.Count != 2 {
		t.Fatalf("unexpected Food stat: %+v", st)
	}
	if st := byName["Transport"]; st.TotalCents != 500 || st.Count != 1 {
		t.Fatalf("unexpected Transport stat: %+v", st)
	}

	// The breakdown total matches the summary's expense total.
	sum, _ := s.FinancialSummary(ctx, 1, core.DateWindow{})
	if total != sum.TotalExpenseCents {
		t.Fatalf("breakdown total %d != summary expense total %d", total, sum.TotalExpenseCents)
	}
}

func TestCategoryStats_DeletedCategoryDropsFromJoin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	food := mustCreateCategory(t, s, 1, "Food", core.Expense)
	mustCreateTransaction(t, s, 1, food.ID, 1000, core.Expense, day(2025, 1, 5))

	if err := s.DeleteCategory(ctx, food.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	stats, err := s.CategoryStats(ctx, 1, core.Expense, core.DateWindow{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 0 {
		t.Fatalf("orphaned transactions must drop from the inner join, got %+v", stats)
	}

	// The summary still counts the orphaned transaction.
	sum, _ := s.FinancialSummary(ctx, 1, core.DateWindow{})
	if sum.TotalExpenseCents != 1000 {
		t.Fatalf("summary must include orphaned rows, got %+v", sum)
	}
}
