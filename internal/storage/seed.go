package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

type seedCategory struct {
	name  string
	kind  core.TransactionKind
	color string
}

var defaultCategories = []seedCategory{
	{"Alimentación", core.Expense, "#10b981"},
	{"Transporte", core.Expense, "#3b82f6"},
	{"Vivienda", core.Expense, "#f59e0b"},
	{"Entretenimiento", core.Expense, "#8b5cf6"},
	{"Salud", core.Expense, "#ef4444"},
	{"Educación", core.Expense, "#06b6d4"},
	{"Compras", core.Expense, "#ec4899"},
	{"Salario", core.Income, "#10b981"},
	{"Freelance", core.Income, "#3b82f6"},
	{"Inversiones", core.Income, "#f59e0b"},
	{"Otros Ingresos", core.Income, "#8b5cf6"},
}

// SeedDefaultCategories creates the system default category set for a
// user. It is idempotent: a user who already owns default categories is
// left untouched.
func (s *Store) SeedDefaultCategories(ctx context.Context, userID int64) error {
	if !s.Available() {
		return core.ErrStorageUnavailable
	}

	var existing int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = ? AND is_default = 1`, userID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("count default categories: %w", err)
	}
	if existing > 0 {
		return nil
	}

	for _, c := range defaultCategories {
		_, err := s.CreateCategory(ctx, CreateCategoryParams{
			UserID:    userID,
			Name:      c.name,
			Kind:      c.kind,
			Color:     c.color,
			IsDefault: true,
		})
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.name, err)
		}
	}
	return nil
}
