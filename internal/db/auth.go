package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"SweetDelights/internal/backend"
	"SweetDelights/internal/models"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAdmin stores an administrator with a bcrypt hash of password.
func (s *Store) CreateAdmin(ctx context.Context, email, password string) (models.Administrator, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.Administrator{}, fmt.Errorf("create admin: email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Administrator{}, fmt.Errorf("create admin: hash password: %w", err)
	}

	a := models.Administrator{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.timestamp(),
	}
	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO admins (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`),
		a.ID, a.Email, a.PasswordHash, toMillis(a.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Administrator{}, fmt.Errorf("create admin %s: %w", email, ErrAdminExists)
		}
		return models.Administrator{}, fmt.Errorf("create admin: %w", err)
	}
	return a, nil
}

// SignIn checks the credentials and opens a new session.
func (s *Store) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.Session{}, backend.ErrInvalidCredentials
	}

	var id, passwordHash string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, password_hash FROM admins WHERE email = ?`), email,
	).Scan(&id, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, backend.ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("sign in: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return models.Session{}, backend.ErrInvalidCredentials
	}

	now := s.timestamp()
	session := models.Session{
		Token:     uuid.NewString(),
		AdminID:   id,
		Email:     email,
		ExpiresAt: now.Add(s.sessionTTL).Truncate(time.Millisecond),
	}
	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO admin_sessions (token, admin_id, created_at, expires_at) VALUES (?, ?, ?, ?)`),
		session.Token, session.AdminID, toMillis(now), toMillis(session.ExpiresAt),
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("sign in: store session: %w", err)
	}
	return session, nil
}

// GetSession resolves a token. Unknown and expired tokens yield
// backend.ErrNoSession; expired ones are removed on the way.
func (s *Store) GetSession(ctx context.Context, token string) (models.Session, error) {
	if strings.TrimSpace(token) == "" {
		return models.Session{}, backend.ErrNoSession
	}

	var (
		session   = models.Session{Token: token}
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT s.admin_id, a.email, s.expires_at
		  FROM admin_sessions s
		  JOIN admins a ON a.id = s.admin_id
		 WHERE s.token = ?`), token,
	).Scan(&session.AdminID, &session.Email, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, backend.ErrNoSession
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("get session: %w", err)
	}
	session.ExpiresAt = fromMillis(expiresAt)

	if session.Expired(s.timestamp()) {
		if err := s.SignOut(ctx, token); err != nil {
			return models.Session{}, err
		}
		return models.Session{}, backend.ErrNoSession
	}
	return session, nil
}

// SignOut drops the session; unknown tokens are not an error.
func (s *Store) SignOut(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM admin_sessions WHERE token = ?`), token); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
