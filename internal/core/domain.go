package core

import (
	"regexp"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"

	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type (
	// TransactionKind partitions money movement into income and expense.
	// The stored amount is always a positive cent count; direction is
	// carried by the kind, never by the sign.
	TransactionKind string

	Role string

	// User is the identity anchor. Rows are created on first
	// authentication and merged on subsequent sign-ins.
	User struct {
		ID           int64      `json:"id"`
		OpenID       string     `json:"openId"`
		Name         *string    `json:"name"`
		Email        *string    `json:"email"`
		LoginMethod  *string    `json:"loginMethod"`
		Role         Role       `json:"role"`
		CreatedAt    time.Time  `json:"createdAt"`
		UpdatedAt    time.Time  `json:"updatedAt"`
		LastSignedIn time.Time  `json:"lastSignedIn"`
	}

	// Category is a named bucket for one transaction kind, owned by
	// exactly one user. Kind is immutable after creation.
	Category struct {
		ID        int64     `json:"id"`
		UserID    int64     `json:"userId"`
		Name      string    `json:"name"`
		Kind      TransactionKind `json:"type"`
		Color     string    `json:"color"`
		Icon      *string   `json:"icon"`
		IsDefault bool      `json:"isDefault"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Transaction is a single monetary event. AmountCents is the stored
	// magnitude in minor units.
	Transaction struct {
		ID              int64     `json:"id"`
		UserID          int64     `json:"userId"`
		CategoryID      int64     `json:"categoryId"`
		AmountCents     int64     `json:"amount"`
		Kind            TransactionKind `json:"type"`
		Description     *string   `json:"description"`
		TransactionDate time.Time `json:"transactionDate"`
		CreatedAt       time.Time `json:"createdAt"`
		UpdatedAt       time.Time `json:"updatedAt"`
	}

	// UserPreference holds per-user display settings, one row per user.
	UserPreference struct {
		ID         int64     `json:"id"`
		UserID     int64     `json:"userId"`
		Currency   string    `json:"currency"`
		DateFormat string    `json:"dateFormat"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}
)

// UserUpsert carries the identity fields merged into the users table,
// keyed on OpenID. Nil optional fields are left untouched on conflict.
type UserUpsert struct {
	OpenID       string
	Name         *string
	Email        *string
	LoginMethod  *string
	Role         *Role
	LastSignedIn *time.Time
}

// CategoryPatch is the optional-field set accepted by category updates.
// There is deliberately no Kind field: kind never changes after creation.
type CategoryPatch struct {
	Name  *string
	Color *string
	Icon  *string
}

// TransactionPatch is the optional-field set accepted by transaction updates.
type TransactionPatch struct {
	CategoryID      *int64
	AmountCents     *int64
	Kind            *TransactionKind
	Description     *string
	TransactionDate *time.Time
}

// PreferencePatch is the optional-field set merged by the preference upsert.
type PreferencePatch struct {
	Currency   *string
	DateFormat *string
}

// TransactionFilter narrows a user's transaction listing. All set fields
// combine with logical AND; date bounds are inclusive.
type TransactionFilter struct {
	CategoryID *int64
	Kind       *TransactionKind
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      *int
	Offset     *int
}

// DateWindow bounds an aggregation by event time, inclusive on both
// sides. A nil bound means unbounded on that side.
type DateWindow struct {
	Start *time.Time
	End   *time.Time
}

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const maxCategoryNameLength = 100

// ValidKind reports whether k is one of the two supported kinds.
func ValidKind(k TransactionKind) bool {
	return k == Income || k == Expense
}

// ValidateCategoryName enforces the 1-100 character name contract.
func ValidateCategoryName(name string) error {
	if name == "" {
		return NewValidationError("name", "name must not be empty")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return NewValidationError("name", "name must be at most 100 characters")
	}
	return nil
}

// ValidateHexColor enforces the #RRGGBB color contract.
func ValidateHexColor(color string) error {
	if !hexColorPattern.MatchString(color) {
		return NewValidationError("color", "color must be a 6-digit hex value like #10b981")
	}
	return nil
}

// ValidateCurrencyCode enforces the 3-letter currency code contract.
func ValidateCurrencyCode(code string) error {
	if len(code) != 3 {
		return NewValidationError("currency", "currency must be a 3-letter code")
	}
	return nil
}
