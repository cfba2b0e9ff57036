// Package organization holds the tenant root entity. Every other domain row
// carries an immutable reference to exactly one organization.
package organization

import (
	"fmt"
	"time"

	"github.com/qmshub/api/pkg/domain/shared"
)

// Organization is the root of tenant isolation.
type Organization struct {
	id        shared.ID
	name      string
	createdAt time.Time
}

// New creates a new organization.
func New(name string) (*Organization, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	return &Organization{
		id:        shared.NewID(),
		name:      name,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstitute recreates an Organization from persistence.
func Reconstitute(id shared.ID, name string, createdAt time.Time) *Organization {
	return &Organization{id: id, name: name, createdAt: createdAt}
}

// ID returns the organization ID.
func (o *Organization) ID() shared.ID { return o.id }

// Name returns the organization name.
func (o *Organization) Name() string { return o.name }

// CreatedAt returns the creation timestamp.
func (o *Organization) CreatedAt() time.Time { return o.createdAt }
