// Package identity holds the tenant context derived from an authenticated
// principal and the pure authorization rules applied to it. Credential
// verification happens upstream; this package never performs I/O.
package identity

import (
	"context"
	"fmt"

	"github.com/qmshub/api/pkg/domain/shared"
)

// Principal is what the authentication collaborator hands us: an
// already-verified identity with its organization binding.
type Principal struct {
	UserID         string
	OrganizationID string
	Role           string
}

// TenantContext is the resolved organization/role binding every component
// requires before touching storage.
type TenantContext struct {
	OrganizationID shared.ID
	UserID         string
	Role           Role
}

// Resolve derives a TenantContext from a principal. A principal without an
// organization binding, or with an unknown role, cannot act on tenant data.
func Resolve(p Principal) (TenantContext, error) {
	if p.OrganizationID == "" {
		return TenantContext{}, fmt.Errorf("%w: principal has no organization binding", shared.ErrUnauthorized)
	}
	orgID, err := shared.IDFromString(p.OrganizationID)
	if err != nil {
		return TenantContext{}, fmt.Errorf("%w: malformed organization id", shared.ErrUnauthorized)
	}
	role, ok := ParseRole(p.Role)
	if !ok {
		return TenantContext{}, fmt.Errorf("%w: unknown role %q", shared.ErrUnauthorized, p.Role)
	}
	return TenantContext{
		OrganizationID: orgID,
		UserID:         p.UserID,
		Role:           role,
	}, nil
}

type tenantContextKey struct{}

// WithTenantContext stores a TenantContext in ctx.
func WithTenantContext(ctx context.Context, tcx TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tcx)
}

// TenantContextFrom extracts the TenantContext from ctx.
func TenantContextFrom(ctx context.Context) (TenantContext, bool) {
	tcx, ok := ctx.Value(tenantContextKey{}).(TenantContext)
	return tcx, ok
}
