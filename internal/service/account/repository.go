package account

import (
	"context"

	"github.com/ignite/coreapp/internal/domain"
)

// Repository defines the data access contract for accounts.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Create inserts a new account and sets its ID. A duplicate email
	// surfaces as the storage layer's unique-violation error.
	Create(ctx context.Context, a *domain.Account) error

	// Save writes every mutable column of an existing account.
	// Returns ErrNotFound if the account doesn't exist.
	Save(ctx context.Context, a *domain.Account) error

	// Get returns a single account. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id int64) (*domain.Account, error)

	// GetByEmail returns the account with exactly this email.
	// Returns ErrNotFound if there is none.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// List returns accounts ordered by ID ascending, plus the total count.
	List(ctx context.Context, filter ListFilter) ([]domain.Account, int, error)

	// Delete removes an account. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id int64) error
}

// ListFilter controls pagination and filtering for account lists.
type ListFilter struct {
	Search    string
	StaffOnly bool
	Limit     int
	Offset    int
}

// UpdateFields holds the mutable fields for an account update.
// Nil fields are not applied.
type UpdateFields struct {
	Email       *string
	Name        *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}
