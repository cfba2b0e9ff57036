package organization

import (
	"context"

	"github.com/qmshub/api/pkg/domain/shared"
)

// Repository defines organization persistence. Organizations are the one
// entity not scoped by a tenant predicate: they are the tenants.
type Repository interface {
	// Create persists a new organization.
	Create(ctx context.Context, org *Organization) error

	// GetByID retrieves an organization by ID.
	GetByID(ctx context.Context, id shared.ID) (*Organization, error)

	// List retrieves all organizations, oldest first.
	List(ctx context.Context) ([]*Organization, error)
}
