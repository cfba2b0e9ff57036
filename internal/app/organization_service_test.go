package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmshub/api/pkg/domain/shared"
)

func TestOrganizationService(t *testing.T) {
	t.Run("creates and retrieves an organization", func(t *testing.T) {
		svc := NewOrganizationService(newOrgRepoStub(), testLogger())

		org, err := svc.CreateOrganization(context.Background(), "Planta Norte")
		require.NoError(t, err)

		got, err := svc.GetOrganization(context.Background(), org.ID())
		require.NoError(t, err)
		assert.Equal(t, "Planta Norte", got.Name())
	})

	t.Run("empty name is a validation error", func(t *testing.T) {
		svc := NewOrganizationService(newOrgRepoStub(), testLogger())

		_, err := svc.CreateOrganization(context.Background(), "")
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		svc := NewOrganizationService(newOrgRepoStub(), testLogger())

		_, err := svc.GetOrganization(context.Background(), shared.NewID())
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("lists all organizations", func(t *testing.T) {
		svc := NewOrganizationService(newOrgRepoStub(), testLogger())
		_, err := svc.CreateOrganization(context.Background(), "Planta Norte")
		require.NoError(t, err)
		_, err = svc.CreateOrganization(context.Background(), "Planta Sur")
		require.NoError(t, err)

		orgs, err := svc.ListOrganizations(context.Background())
		require.NoError(t, err)
		assert.Len(t, orgs, 2)
	})
}
