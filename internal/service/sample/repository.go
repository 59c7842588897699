package sample

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/coreapp/internal/domain"
)

// Repository defines the data access contract for sample records.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Create inserts the record and sets CreatedAt from the database.
	Create(ctx context.Context, r *domain.SampleRecord) error

	// Update writes every column except id and created_at, and refreshes
	// r.CreatedAt. Returns ErrNotFound if the record doesn't exist.
	Update(ctx context.Context, r *domain.SampleRecord) error

	// Get returns a single record. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.SampleRecord, error)

	// List returns records newest first, plus the total count.
	List(ctx context.Context, filter ListFilter) ([]domain.SampleRecord, int, error)

	// Delete removes a record. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListFilter controls pagination and filtering for record lists.
type ListFilter struct {
	Status domain.Status
	Search string // matched against title and search_vector
	Limit  int
	Offset int
}
