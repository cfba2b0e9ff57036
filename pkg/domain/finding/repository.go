package finding

import (
	"context"
	"database/sql"
	"time"

	"github.com/qmshub/api/pkg/domain/shared"
	"github.com/qmshub/api/pkg/pagination"
)

// Repository defines finding persistence. Every method that reads or writes
// takes the owning organization so implementations can apply the tenant
// predicate; a foreign-tenant id must behave exactly like an absent row.
type Repository interface {
	// CreateInTx persists a new finding within an existing transaction.
	CreateInTx(ctx context.Context, tx *sql.Tx, f *Finding) error

	// GetByID retrieves a finding scoped to the organization.
	GetByID(ctx context.Context, orgID, id shared.ID) (*Finding, error)

	// List retrieves findings for the organization with filtering and pagination.
	List(ctx context.Context, orgID shared.ID, filter Filter, opts ListOptions, page pagination.Pagination) (pagination.Result[*Finding], error)

	// Update persists plain field edits. Estado and organization are not
	// written by this method.
	Update(ctx context.Context, f *Finding) error

	// UpdateEstadoInTx performs the compare-and-swap estado write inside an
	// existing transaction: the predicate includes the expected prior
	// estado. Zero rows affected yields shared.ErrConflict when the row
	// exists under the scope and shared.ErrNotFound otherwise.
	UpdateEstadoInTx(ctx context.Context, tx *sql.Tx, orgID, id shared.ID, expected, next Estado, updatedAt time.Time) error
}

// ActionRepository defines action persistence. Tenant scoping goes through
// the owning finding's organization.
type ActionRepository interface {
	// CreateInTx persists a new action within an existing transaction.
	CreateInTx(ctx context.Context, tx *sql.Tx, orgID shared.ID, a *Action) error

	// GetByID retrieves an action scoped to the organization.
	GetByID(ctx context.Context, orgID, id shared.ID) (*Action, error)

	// ListByFinding retrieves all actions of a finding, oldest first.
	ListByFinding(ctx context.Context, orgID, findingID shared.ID) ([]*Action, error)

	// UpdateEstado persists a change to the action's own estado.
	UpdateEstado(ctx context.Context, orgID shared.ID, a *Action) error
}

// HistoryRepository is the append-only audit recorder. Writes only happen
// inside another component's transaction; there is deliberately no
// standalone create, update, or delete.
type HistoryRepository interface {
	// AppendInTx persists a history entry within an existing transaction.
	AppendInTx(ctx context.Context, tx *sql.Tx, orgID shared.ID, entry *HistoryEntry) error

	// ListByFinding retrieves all entries of a finding ordered by the
	// insertion sequence number.
	ListByFinding(ctx context.Context, orgID, findingID shared.ID) ([]*HistoryEntry, error)
}

// TagRepository defines tag persistence.
type TagRepository interface {
	// CreateInTx persists a tag within an existing transaction.
	CreateInTx(ctx context.Context, tx *sql.Tx, tag Tag) error

	// ListByFinding retrieves all tags of a finding.
	ListByFinding(ctx context.Context, orgID, findingID shared.ID) ([]Tag, error)
}

// Filter defines the filtering options for listing findings.
type Filter struct {
	Estados     []Estado
	Prioridades []Prioridad
	Categoria   *string
	Origen      *string
	Responsable *string
	Search      *string
}

// NewFilter creates an empty filter.
func NewFilter() Filter {
	return Filter{}
}

// WithEstados adds an estado filter.
func (f Filter) WithEstados(estados ...Estado) Filter {
	f.Estados = estados
	return f
}

// WithPrioridades adds a priority filter.
func (f Filter) WithPrioridades(prioridades ...Prioridad) Filter {
	f.Prioridades = prioridades
	return f
}

// WithCategoria adds a category filter.
func (f Filter) WithCategoria(categoria string) Filter {
	f.Categoria = &categoria
	return f
}

// WithOrigen adds an origin filter.
func (f Filter) WithOrigen(origen string) Filter {
	f.Origen = &origen
	return f
}

// WithResponsable adds a responsible-person filter.
func (f Filter) WithResponsable(responsable string) Filter {
	f.Responsable = &responsable
	return f
}

// WithSearch adds a substring search over numero and titulo.
func (f Filter) WithSearch(search string) Filter {
	f.Search = &search
	return f
}

// ListOptions contains options for listing (sorting).
type ListOptions struct {
	Sort *pagination.SortOption
}

// AllowedSortFields returns the allowed sort fields for findings.
func AllowedSortFields() map[string]string {
	return map[string]string{
		"numero":         "numero",
		"titulo":         "titulo",
		"prioridad":      "prioridad",
		"estado":         "estado",
		"fecha_registro": "fecha_registro",
		"created_at":     "created_at",
		"updated_at":     "updated_at",
	}
}
