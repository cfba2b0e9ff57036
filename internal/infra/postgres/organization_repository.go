package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qmshub/api/pkg/domain/organization"
	"github.com/qmshub/api/pkg/domain/shared"
)

// OrganizationRepository implements organization.Repository using PostgreSQL.
type OrganizationRepository struct {
	db *DB
}

// NewOrganizationRepository creates a new OrganizationRepository.
func NewOrganizationRepository(db *DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create persists a new organization.
func (r *OrganizationRepository) Create(ctx context.Context, org *organization.Organization) error {
	query := `INSERT INTO organizations (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, org.ID().String(), org.Name(), org.CreatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: organization already exists", shared.ErrConflict)
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetByID retrieves an organization by ID.
func (r *OrganizationRepository) GetByID(ctx context.Context, id shared.ID) (*organization.Organization, error) {
	query := `SELECT id, name, created_at FROM organizations WHERE id = $1`

	var (
		orgID     shared.ID
		name      string
		createdAt time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&orgID, &name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: organization %s", shared.ErrNotFound, id.String())
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return organization.Reconstitute(orgID, name, createdAt), nil
}

// List retrieves all organizations, oldest first.
func (r *OrganizationRepository) List(ctx context.Context) ([]*organization.Organization, error) {
	query := `SELECT id, name, created_at FROM organizations ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*organization.Organization
	for rows.Next() {
		var (
			id        shared.ID
			name      string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, organization.Reconstitute(id, name, createdAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return orgs, nil
}
