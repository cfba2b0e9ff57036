package postgres

import (
	"fmt"

	"github.com/qmshub/api/pkg/domain/shared"
)

// Scope is the single source of truth for tenant isolation: it builds the
// organization predicate every repository read and write must carry. A query
// scoped to organization A that references a row owned by organization B
// matches zero rows. The row reads as absent, so tenant existence never
// leaks.
type Scope struct {
	organizationID shared.ID
}

// NewScope creates a scope for an organization.
func NewScope(organizationID shared.ID) Scope {
	return Scope{organizationID: organizationID}
}

// OrganizationID returns the scoped organization.
func (s Scope) OrganizationID() shared.ID {
	return s.organizationID
}

// Predicate returns the tenant condition for a column qualified by alias
// (empty alias for unqualified), using the given positional argument index.
func (s Scope) Predicate(alias string, argIndex int) string {
	column := "organization_id"
	if alias != "" {
		column = alias + ".organization_id"
	}
	return fmt.Sprintf("%s = $%d", column, argIndex)
}

// Arg returns the argument value bound to the predicate.
func (s Scope) Arg() any {
	return s.organizationID.String()
}

// SubqueryPredicate scopes tables that reference findings rather than
// organizations directly: the row qualifies only when its finding belongs to
// the scoped organization.
func (s Scope) SubqueryPredicate(findingColumn string, argIndex int) string {
	return fmt.Sprintf("%s IN (SELECT id FROM findings WHERE organization_id = $%d)", findingColumn, argIndex)
}
