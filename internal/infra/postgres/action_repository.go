package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/domain/shared"
)

// ActionRepository implements finding.ActionRepository using PostgreSQL.
// Actions carry no organization column; every query scopes through the
// owning finding.
type ActionRepository struct {
	db *DB
}

// NewActionRepository creates a new ActionRepository.
func NewActionRepository(db *DB) *ActionRepository {
	return &ActionRepository{db: db}
}

const actionColumns = `
	a.id, a.finding_id, a.tipo, a.descripcion, a.fecha, a.estado,
	a.created_at, a.updated_at`

func (r *ActionRepository) selectQuery() string {
	return "SELECT" + actionColumns + " FROM actions a"
}

// CreateInTx persists a new action within an existing transaction. The
// INSERT only succeeds when the owning finding belongs to the scoped
// organization.
func (r *ActionRepository) CreateInTx(ctx context.Context, tx *sql.Tx, orgID shared.ID, a *finding.Action) error {
	scope := NewScope(orgID)
	query := `
		INSERT INTO actions (id, finding_id, tipo, descripcion, fecha, estado, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE ` + scope.SubqueryPredicate("$2", 9)

	result, err := tx.ExecContext(ctx, query,
		a.ID().String(),
		a.FindingID().String(),
		a.Tipo().String(),
		a.Descripcion(),
		a.Fecha(),
		a.Estado().String(),
		a.CreatedAt(),
		a.UpdatedAt(),
		scope.Arg(),
	)
	if err != nil {
		return fmt.Errorf("failed to create action: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return finding.NewFindingNotFoundError(a.FindingID().String())
	}
	return nil
}

// GetByID retrieves an action scoped to the organization via its finding.
func (r *ActionRepository) GetByID(ctx context.Context, orgID, id shared.ID) (*finding.Action, error) {
	scope := NewScope(orgID)
	query := r.selectQuery() + `
		JOIN findings f ON f.id = a.finding_id
		WHERE ` + scope.Predicate("f", 1) + ` AND a.id = $2`

	row := r.db.QueryRowContext(ctx, query, scope.Arg(), id.String())
	a, err := r.scanAction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, finding.NewActionNotFoundError(id.String())
		}
		return nil, fmt.Errorf("failed to get action: %w", err)
	}
	return a, nil
}

// ListByFinding retrieves all actions of a finding, oldest first.
func (r *ActionRepository) ListByFinding(ctx context.Context, orgID, findingID shared.ID) ([]*finding.Action, error) {
	scope := NewScope(orgID)
	query := r.selectQuery() + `
		JOIN findings f ON f.id = a.finding_id
		WHERE ` + scope.Predicate("f", 1) + ` AND a.finding_id = $2
		ORDER BY a.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, scope.Arg(), findingID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	defer rows.Close()

	var actions []*finding.Action
	for rows.Next() {
		a, err := r.scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actions: %w", err)
	}
	return actions, nil
}

// UpdateEstado persists a change to the action's own estado. Only the estado
// column moves; tipo and descripcion are immutable after attach.
func (r *ActionRepository) UpdateEstado(ctx context.Context, orgID shared.ID, a *finding.Action) error {
	scope := NewScope(orgID)
	query := `
		UPDATE actions SET estado = $3, updated_at = $4
		WHERE id = $2 AND ` + scope.SubqueryPredicate("finding_id", 1)

	result, err := r.db.ExecContext(ctx, query,
		scope.Arg(),
		a.ID().String(),
		a.Estado().String(),
		a.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to update action estado: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return finding.NewActionNotFoundError(a.ID().String())
	}
	return nil
}

// scanAction scans a row into an Action.
func (r *ActionRepository) scanAction(row interface{ Scan(...any) error }) (*finding.Action, error) {
	var (
		id        shared.ID
		findingID shared.ID
		tipo      string
		desc      string
		fecha     time.Time
		estado    string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &findingID, &tipo, &desc, &fecha, &estado, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return finding.ReconstituteAction(
		id,
		findingID,
		finding.ActionTipo(tipo),
		desc,
		fecha,
		finding.ActionEstado(estado),
		createdAt,
		updatedAt,
	), nil
}
