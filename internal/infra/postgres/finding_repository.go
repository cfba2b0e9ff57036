package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/domain/shared"
	"github.com/qmshub/api/pkg/pagination"
)

// FindingRepository implements finding.Repository using PostgreSQL.
type FindingRepository struct {
	db *DB
}

// NewFindingRepository creates a new FindingRepository.
func NewFindingRepository(db *DB) *FindingRepository {
	return &FindingRepository{db: db}
}

const findingColumns = `
	id, organization_id, numero, titulo, descripcion, origen, categoria,
	requisito_incumplido, prioridad, responsable, fecha_registro, estado,
	accion_inmediata, created_at, updated_at`

func (r *FindingRepository) selectQuery() string {
	return "SELECT" + findingColumns + " FROM findings"
}

// CreateInTx persists a new finding within an existing transaction.
func (r *FindingRepository) CreateInTx(ctx context.Context, tx *sql.Tx, f *finding.Finding) error {
	query := `
		INSERT INTO findings (
			id, organization_id, numero, titulo, descripcion, origen, categoria,
			requisito_incumplido, prioridad, responsable, fecha_registro, estado,
			accion_inmediata, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.ExecContext(ctx, query,
		f.ID().String(),
		f.OrganizationID().String(),
		f.Numero(),
		f.Titulo(),
		nullString(f.Descripcion()),
		nullString(f.Origen()),
		nullString(f.Categoria()),
		nullString(f.Requisito()),
		f.Prioridad().String(),
		nullString(f.Responsable()),
		f.FechaRegistro(),
		f.Estado().String(),
		nullString(f.AccionInmediata()),
		f.CreatedAt(),
		f.UpdatedAt(),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return finding.NewNumeroExistsError(f.Numero())
		}
		return fmt.Errorf("failed to create finding: %w", err)
	}

	return nil
}

// GetByID retrieves a finding scoped to the organization. A foreign-tenant
// id matches zero rows and reports not found.
func (r *FindingRepository) GetByID(ctx context.Context, orgID, id shared.ID) (*finding.Finding, error) {
	scope := NewScope(orgID)
	query := r.selectQuery() + " WHERE " + scope.Predicate("", 1) + " AND id = $2"

	row := r.db.QueryRowContext(ctx, query, scope.Arg(), id.String())
	f, err := r.scanFinding(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, finding.NewFindingNotFoundError(id.String())
		}
		return nil, fmt.Errorf("failed to get finding: %w", err)
	}
	return f, nil
}

// List retrieves findings for the organization with filtering, sorting, and
// pagination.
func (r *FindingRepository) List(ctx context.Context, orgID shared.ID, filter finding.Filter, opts finding.ListOptions, page pagination.Pagination) (pagination.Result[*finding.Finding], error) {
	scope := NewScope(orgID)
	where := []string{scope.Predicate("", 1)}
	args := []any{scope.Arg()}

	if len(filter.Estados) > 0 {
		placeholders := make([]string, 0, len(filter.Estados))
		for _, e := range filter.Estados {
			args = append(args, e.String())
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, "estado IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(filter.Prioridades) > 0 {
		placeholders := make([]string, 0, len(filter.Prioridades))
		for _, p := range filter.Prioridades {
			args = append(args, p.String())
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		where = append(where, "prioridad IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.Categoria != nil {
		args = append(args, *filter.Categoria)
		where = append(where, fmt.Sprintf("categoria = $%d", len(args)))
	}
	if filter.Origen != nil {
		args = append(args, *filter.Origen)
		where = append(where, fmt.Sprintf("origen = $%d", len(args)))
	}
	if filter.Responsable != nil {
		args = append(args, *filter.Responsable)
		where = append(where, fmt.Sprintf("responsable = $%d", len(args)))
	}
	if filter.Search != nil {
		args = append(args, wrapLikePattern(*filter.Search))
		n := len(args)
		where = append(where, fmt.Sprintf("(numero ILIKE $%d OR titulo ILIKE $%d)", n, n))
	}

	whereClause := " WHERE " + strings.Join(where, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM findings" + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return pagination.Result[*finding.Finding]{}, fmt.Errorf("failed to count findings: %w", err)
	}

	query := r.selectQuery() + whereClause
	if opts.Sort != nil && !opts.Sort.IsEmpty() {
		query += " ORDER BY " + opts.Sort.SQL()
	} else {
		query += " ORDER BY created_at DESC"
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", page.Limit(), page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return pagination.Result[*finding.Finding]{}, fmt.Errorf("failed to list findings: %w", err)
	}
	defer rows.Close()

	var findings []*finding.Finding
	for rows.Next() {
		f, err := r.scanFinding(rows)
		if err != nil {
			return pagination.Result[*finding.Finding]{}, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return pagination.Result[*finding.Finding]{}, fmt.Errorf("failed to iterate findings: %w", err)
	}

	return pagination.NewResult(findings, total, page), nil
}

// Update persists plain field edits. The estado and organization columns are
// deliberately absent from the SET clause.
func (r *FindingRepository) Update(ctx context.Context, f *finding.Finding) error {
	scope := NewScope(f.OrganizationID())
	query := `
		UPDATE findings
		SET titulo = $3, descripcion = $4, origen = $5, categoria = $6,
		    requisito_incumplido = $7, prioridad = $8, responsable = $9,
		    accion_inmediata = $10, updated_at = $11
		WHERE ` + scope.Predicate("", 1) + ` AND id = $2`

	result, err := r.db.ExecContext(ctx, query,
		scope.Arg(),
		f.ID().String(),
		f.Titulo(),
		nullString(f.Descripcion()),
		nullString(f.Origen()),
		nullString(f.Categoria()),
		nullString(f.Requisito()),
		f.Prioridad().String(),
		nullString(f.Responsable()),
		nullString(f.AccionInmediata()),
		f.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to update finding: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return finding.NewFindingNotFoundError(f.ID().String())
	}
	return nil
}

// UpdateEstadoInTx performs the compare-and-swap estado write. The predicate
// carries both the tenant scope and the expected prior estado; zero rows
// affected is a conflict when the row exists under the scope and not-found
// otherwise.
func (r *FindingRepository) UpdateEstadoInTx(ctx context.Context, tx *sql.Tx, orgID, id shared.ID, expected, next finding.Estado, updatedAt time.Time) error {
	scope := NewScope(orgID)
	query := `
		UPDATE findings
		SET estado = $4, updated_at = $5
		WHERE ` + scope.Predicate("", 1) + ` AND id = $2 AND estado = $3`

	result, err := tx.ExecContext(ctx, query,
		scope.Arg(),
		id.String(),
		expected.String(),
		next.String(),
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update finding estado: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		existsQuery := "SELECT 1 FROM findings WHERE " + scope.Predicate("", 1) + " AND id = $2"
		var one int
		switch err := tx.QueryRowContext(ctx, existsQuery, scope.Arg(), id.String()).Scan(&one); {
		case errors.Is(err, sql.ErrNoRows):
			return finding.NewFindingNotFoundError(id.String())
		case err != nil:
			return fmt.Errorf("failed to check finding existence: %w", err)
		default:
			return fmt.Errorf("%w: finding estado changed since read", shared.ErrConflict)
		}
	}
	return nil
}

// scanFinding scans a row into a Finding.
func (r *FindingRepository) scanFinding(row interface{ Scan(...any) error }) (*finding.Finding, error) {
	var (
		id              shared.ID
		orgID           shared.ID
		numero          string
		titulo          string
		descripcion     sql.NullString
		origen          sql.NullString
		categoria       sql.NullString
		requisito       sql.NullString
		prioridad       string
		responsable     sql.NullString
		fechaRegistro   time.Time
		estado          string
		accionInmediata sql.NullString
		createdAt       time.Time
		updatedAt       time.Time
	)

	err := row.Scan(
		&id, &orgID, &numero, &titulo, &descripcion, &origen, &categoria,
		&requisito, &prioridad, &responsable, &fechaRegistro, &estado,
		&accionInmediata, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	return finding.Reconstitute(
		id,
		orgID,
		numero,
		titulo,
		nullStringValue(descripcion),
		nullStringValue(origen),
		nullStringValue(categoria),
		nullStringValue(requisito),
		finding.Prioridad(prioridad),
		nullStringValue(responsable),
		fechaRegistro,
		finding.Estado(estado),
		nullStringValue(accionInmediata),
		createdAt,
		updatedAt,
	), nil
}
