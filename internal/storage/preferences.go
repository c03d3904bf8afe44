package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// GetPreferences returns the user's preference row, or nil when none
// was ever written. Callers apply their own defaults for the nil case.
func (s *Store) GetPreferences(ctx context.Context, userID int64) (*core.UserPreference, error) {
	if !s.Available() {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, currency, date_format, created_at, updated_at
		FROM user_preferences WHERE user_id = ?`, userID)

	var p core.UserPreference
	err := row.Scan(&p.ID, &p.UserID, &p.Currency, &p.DateFormat, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &p, nil
}

// UpsertPreferences inserts or merges the preference row keyed on the
// unique owning-user id. Unset patch fields keep their stored (or
// schema default) values.
func (s *Store) UpsertPreferences(ctx context.Context, userID int64, patch core.PreferencePatch) error {
	if !s.Available() {
		return core.ErrStorageUnavailable
	}

	ts := now()
	currency := "EUR"
	if patch.Currency != nil {
		currency = *patch.Currency
	}
	dateFormat := "DD/MM/YYYY"
	if patch.DateFormat != nil {
		dateFormat = *patch.DateFormat
	}

	set := []string{"updated_at = excluded.updated_at"}
	if patch.Currency != nil {
		set = append(set, "currency = excluded.currency")
	}
	if patch.DateFormat != nil {
		set = append(set, "date_format = excluded.date_format")
	}

	query := fmt.Sprintf(`
		INSERT INTO user_preferences (user_id, currency, date_format, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET %s`, strings.Join(set, ", "))

	if _, err := s.db.ExecContext(ctx, query, userID, currency, dateFormat, ts, ts); err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
