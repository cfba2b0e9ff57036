package app

import (
	"context"

	"github.com/qmshub/api/pkg/domain/organization"
	"github.com/qmshub/api/pkg/domain/shared"
	"github.com/qmshub/api/pkg/logger"
)

// OrganizationService handles plain organization CRUD. Organizations carry
// no workflow and no cross-row invariants beyond their own uniqueness.
type OrganizationService struct {
	repo   organization.Repository
	logger *logger.Logger
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(repo organization.Repository, log *logger.Logger) *OrganizationService {
	return &OrganizationService{
		repo:   repo,
		logger: log.With("service", "organization"),
	}
}

// CreateOrganization creates a new tenant root.
func (s *OrganizationService) CreateOrganization(ctx context.Context, name string) (*organization.Organization, error) {
	org, err := organization.New(name)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, org); err != nil {
		if shared.IsConflict(err) {
			return nil, err
		}
		return nil, shared.ClassifyStorageErr(err)
	}
	s.logger.Info("organization created", "organization_id", org.ID().String(), "name", org.Name())
	return org, nil
}

// GetOrganization retrieves an organization by ID.
func (s *OrganizationService) GetOrganization(ctx context.Context, id shared.ID) (*organization.Organization, error) {
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.ClassifyStorageErr(err)
	}
	return org, nil
}

// ListOrganizations retrieves all organizations.
func (s *OrganizationService) ListOrganizations(ctx context.Context) ([]*organization.Organization, error) {
	orgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, shared.ClassifyStorageErr(err)
	}
	return orgs, nil
}
