package domain

import (
	"strings"
	"time"
)

// Account is the authentication and authorization record. The email is the
// identity key; Password only ever holds an encoded hash.
type Account struct {
	ID          int64      `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Name        string     `json:"name" db:"name"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	IsStaff     bool       `json:"is_staff" db:"is_staff"`
	IsSuperuser bool       `json:"is_superuser" db:"is_superuser"`
	Password    string     `json:"-" db:"password"`
	LastLogin   *time.Time `json:"last_login,omitempty" db:"last_login"`
}

// String returns the account's email.
func (a *Account) String() string { return a.Email }

// CanAccessAdmin reports whether the account may use the admin API.
func (a *Account) CanAccessAdmin() bool { return a.IsActive && a.IsStaff }

// NormalizeEmail lowercases the domain part of an email address and trims
// surrounding whitespace. The local part is left untouched because mail
// servers may treat it case-sensitively. Values without an "@" are returned
// unchanged.
func NormalizeEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	at := strings.LastIndex(trimmed, "@")
	if at < 0 {
		return email
	}
	return trimmed[:at] + "@" + strings.ToLower(trimmed[at+1:])
}
