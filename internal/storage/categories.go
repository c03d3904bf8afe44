package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// CreateCategoryParams carries the fields for a new category row.
type CreateCategoryParams struct {
	UserID    int64
	Name      string
	Kind      core.TransactionKind
	Color     string
	Icon      *string
	IsDefault bool
}

// CreateCategory inserts a category and returns the materialized row.
func (s *Store) CreateCategory(ctx context.Context, p CreateCategoryParams) (*core.Category, error) {
	if !s.Available() {
		return nil, core.ErrStorageUnavailable
	}

	ts := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, type, color, icon, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Name, string(p.Kind), p.Color, p.Icon, p.IsDefault, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("category insert id: %w", err)
	}
	return s.GetCategoryByID(ctx, id, p.UserID)
}

// GetCategoryByID returns the category matching both id and owner, or
// nil when no such row is visible to this user.
func (s *Store) GetCategoryByID(ctx context.Context, id, userID int64) (*core.Category, error) {
	if !s.Available() {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, color, icon, is_default, created_at, updated_at
		FROM categories WHERE id = ? AND user_id = ?`, id, userID)

	var c core.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Kind, &c.Color, &c.Icon, &c.IsDefault,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// ListCategories returns the user's categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	if !s.Available() {
		return []core.Category{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, color, icon, is_default, created_at, updated_at
		FROM categories WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Kind, &c.Color, &c.Icon, &c.IsDefault,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory mutates only the row matching both id and owner and
// refreshes its update timestamp. Kind is never part of the patch. A
// missing or foreign-owned row is a silent no-op.
func (s *Store) UpdateCategory(ctx context.Context, id, userID int64, patch core.CategoryPatch) error {
	if !s.Available() {
		return core.ErrStorageUnavailable
	}

	set := []string{"updated_at = ?"}
	args := []any{now()}
	if patch.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Color != nil {
		set = append(set, "color = ?")
		args = append(args, *patch.Color)
	}
	if patch.Icon != nil {
		set = append(set, "icon = ?")
		args = append(args, *patch.Icon)
	}
	args = append(args, id, userID)

	query := fmt.Sprintf("UPDATE categories SET %s WHERE id = ? AND user_id = ?", strings.Join(set, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// DeleteCategory removes the row matching both id and owner. It does
// not cascade: transactions keep their category_id and display falls
// back to a "no category" label.
func (s *Store) DeleteCategory(ctx context.Context, id, userID int64) error {
	if !s.Available() {
		return core.ErrStorageUnavailable
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
