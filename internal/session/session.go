// Package session resolves the signed session cookie into an
// authenticated user. The cookie carries an HS256 JWT minted by the
// identity provider callback; this package verifies it, loads or
// creates the matching user row, and hangs the user on the request
// context for the handlers.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Claims is the payload of the session token.
type Claims struct {
	OpenID      string `json:"openId"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	LoginMethod string `json:"loginMethod,omitempty"`
	jwt.RegisteredClaims
}

// UserStore is the slice of storage the session layer needs.
type UserStore interface {
	GetUserByOpenID(ctx context.Context, openID string) (*core.User, error)
	UpsertUser(ctx context.Context, u core.UserUpsert) error
	SeedDefaultCategories(ctx context.Context, userID int64) error
}

// Manager verifies session tokens and resolves them to users.
type Manager struct {
	secret     []byte
	cookieName string
	store      UserStore
	logger     *log.Logger
}

func NewManager(secret, cookieName string, store UserStore, logger *log.Logger) *Manager {
	return &Manager{
		secret:     []byte(secret),
		cookieName: cookieName,
		store:      store,
		logger:     logger.WithComponent(log.ComponentSession),
	}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// IssueToken signs a session token for the given claims. Tokens without
// an explicit expiry get 30 days.
func (m *Manager) IssueToken(claims Claims) (string, error) {
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour))
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(time.Now())
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies the signature and expiry and returns the claims.
func (m *Manager) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if claims.OpenID == "" {
		return nil, fmt.Errorf("session token missing openId claim")
	}
	return claims, nil
}

// ClearCookie expires the session cookie on the client.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type contextKey struct{}

var userKey contextKey

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*core.User, bool) {
	u, ok := ctx.Value(userKey).(*core.User)
	return u, ok
}

// RequireUser returns the authenticated user or ErrUnauthenticated.
func RequireUser(ctx context.Context) (*core.User, error) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return nil, core.ErrUnauthenticated
	}
	return u, nil
}

// Middleware resolves the session cookie into a user and stores it on
// the request context. Requests without a valid cookie pass through
// unauthenticated; each handler decides whether it needs a user.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.ParseToken(cookie.Value)
		if err != nil {
			m.logger.DebugContext(r.Context(), "rejected session token", log.FieldError, err)
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.resolveUser(r.Context(), claims)
		if err != nil {
			m.logger.WarnContext(r.Context(), "session user lookup failed",
				log.FieldError, err,
				log.FieldOpenID, claims.OpenID)
			next.ServeHTTP(w, r)
			return
		}
		if user == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveUser loads the user for the claims, creating the row on first
// authentication. New users get the default category set; a seeding
// failure is logged but does not block sign-in.
func (m *Manager) resolveUser(ctx context.Context, claims *Claims) (*core.User, error) {
	user, err := m.store.GetUserByOpenID(ctx, claims.OpenID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	upsert := core.UserUpsert{OpenID: claims.OpenID}
	if claims.Name != "" {
		upsert.Name = &claims.Name
	}
	if claims.Email != "" {
		upsert.Email = &claims.Email
	}
	if claims.LoginMethod != "" {
		upsert.LoginMethod = &claims.LoginMethod
	}
	if err := m.store.UpsertUser(ctx, upsert); err != nil {
		return nil, err
	}

	user, err = m.store.GetUserByOpenID(ctx, claims.OpenID)
	if err != nil || user == nil {
		return user, err
	}

	if err := m.store.SeedDefaultCategories(ctx, user.ID); err != nil {
		m.logger.WarnContext(ctx, "default category seeding failed",
			log.FieldError, err,
			log.FieldUserID, user.ID)
	}
	m.logger.InfoContext(ctx, "created user on first sign-in",
		log.FieldUserID, user.ID,
		log.FieldOpenID, user.OpenID)
	return user, nil
}
