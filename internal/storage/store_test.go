package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), "owner-open-id")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T {
	return &v
}

func mustCreateCategory(t *testing.T, s *Store, userID int64, name string, kind core.TransactionKind) *core.Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), CreateCategoryParams{
		UserID: userID,
		Name:   name,
		Kind:   kind,
		Color:  "#10b981",
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func mustCreateTransaction(t *testing.T, s *Store, userID, categoryID, cents int64, kind core.TransactionKind, date time.Time) *core.Transaction {
	t.Helper()
	tx, err := s.CreateTransaction(context.Background(), CreateTransactionParams{
		UserID:          userID,
		CategoryID:      categoryID,
		AmountCents:     cents,
		Kind:            kind,
		TransactionDate: date,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func TestUnavailableStore(t *testing.T) {
	s := Unavailable()
	ctx := context.Background()

	if s.Available() {
		t.Fatal("store without connection must report unavailable")
	}

	// Reads degrade to empty results.
	if cats, err := s.ListCategories(ctx, 1); err != nil || len(cats) != 0 {
		t.Fatalf("expected empty list, got %v err=%v", cats, err)
	}
	if tx, err := s.GetTransactionByID(ctx, 1, 1); err != nil || tx != nil {
		t.Fatalf("expected absent transaction, got %v err=%v", tx, err)
	}
	if sum, err := s.FinancialSummary(ctx, 1, core.DateWindow{}); err != nil || sum.BalanceCents != 0 {
		t.Fatalf("expected zero summary, got %+v err=%v", sum, err)
	}
	if prefs, err := s.GetPreferences(ctx, 1); err != nil || prefs != nil {
		t.Fatalf("expected absent preferences, got %v err=%v", prefs, err)
	}

	// Writes raise the explicit unavailable signal.
	_, err := s.CreateCategory(ctx, CreateCategoryParams{UserID: 1, Name: "x", Kind: core.Expense, Color: "#000000"})
	if !errors.Is(err, core.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, 1, 1); !errors.Is(err, core.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if err := s.UpsertPreferences(ctx, 1, core.PreferencePatch{}); !errors.Is(err, core.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath, "")
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()

	s2, err := Open(dbPath, "")
	if err != nil {
		t.Fatalf("reopen with applied migrations: %v", err)
	}
	s2.Close()
}
