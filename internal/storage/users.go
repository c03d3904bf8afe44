package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// UpsertUser inserts or merges a user row keyed on the unique open_id.
// Only explicitly supplied optional fields are merged on conflict; an
// unset last-sign-in defaults to now, and the configured owner identity
// is promoted to admin when no explicit role was supplied.
func (s *Store) UpsertUser(ctx context.Context, u core.UserUpsert) error {
	if !s.Available() {
		return core.ErrStorageUnavailable
	}
	if u.OpenID == "" {
		return core.NewValidationError("openId", "openId is required for upsert")
	}

	ts := now()
	lastSignedIn := ts
	if u.LastSignedIn != nil {
		lastSignedIn = normalizeTime(*u.LastSignedIn)
	}

	role := core.RoleUser
	explicitRole := u.Role != nil
	if explicitRole {
		role = *u.Role
	} else if s.ownerOpenID != "" && u.OpenID == s.ownerOpenID {
		role = core.RoleAdmin
	}

	set := []string{"last_signed_in = excluded.last_signed_in", "updated_at = excluded.updated_at"}
	if u.Name != nil {
		set = append(set, "name = excluded.name")
	}
	if u.Email != nil {
		set = append(set, "email = excluded.email")
	}
	if u.LoginMethod != nil {
		set = append(set, "login_method = excluded.login_method")
	}
	if explicitRole || role == core.RoleAdmin {
		set = append(set, "role = excluded.role")
	}

	query := fmt.Sprintf(`
		INSERT INTO users (open_id, name, email, login_method, role, created_at, updated_at, last_signed_in)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(open_id) DO UPDATE SET %s`, strings.Join(set, ", "))

	_, err := s.db.ExecContext(ctx, query,
		u.OpenID, u.Name, u.Email, u.LoginMethod, string(role), ts, ts, lastSignedIn)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUserByOpenID returns the user with the given external identity, or
// nil when no such row exists.
func (s *Store) GetUserByOpenID(ctx context.Context, openID string) (*core.User, error) {
	if !s.Available() {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, open_id, name, email, login_method, role, created_at, updated_at, last_signed_in
		FROM users WHERE open_id = ?`, openID)

	var u core.User
	err := row.Scan(&u.ID, &u.OpenID, &u.Name, &u.Email, &u.LoginMethod, &u.Role,
		&u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by open id: %w", err)
	}
	return &u, nil
}
