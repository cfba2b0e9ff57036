package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qmshub/api/pkg/domain/shared"
)

func TestScopePredicate(t *testing.T) {
	orgID := shared.NewID()
	scope := NewScope(orgID)

	assert.Equal(t, "organization_id = $1", scope.Predicate("", 1))
	assert.Equal(t, "f.organization_id = $3", scope.Predicate("f", 3))
	assert.Equal(t, orgID.String(), scope.Arg())
}

func TestScopeSubqueryPredicate(t *testing.T) {
	scope := NewScope(shared.NewID())

	assert.Equal(t,
		"finding_id IN (SELECT id FROM findings WHERE organization_id = $2)",
		scope.SubqueryPredicate("finding_id", 2),
	)
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLikePattern("50%"))
	assert.Equal(t, `a\_b`, escapeLikePattern("a_b"))
	assert.Equal(t, `c\\d`, escapeLikePattern(`c\d`))
	assert.Equal(t, "%abc%", wrapLikePattern("abc"))
}
