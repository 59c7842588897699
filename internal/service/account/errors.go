package account

import "errors"

// Sentinel errors for the account service layer.
var (
	ErrEmailRequired      = errors.New("users must have an email address")
	ErrNotFound           = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
