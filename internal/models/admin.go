package models

import "time"

// Administrator is a row of the admins table.
// Пароль хранится только в виде bcrypt-хэша.
type Administrator struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is the authenticated admin context handed out by the auth backend.
// Handlers only care whether one exists.
type Session struct {
	Token     string    `json:"token"`
	AdminID   string    `json:"admin_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
