package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/domain/shared"
)

// HistoryRepository implements the append-only audit recorder. There is no
// Update or Delete: rows are written once, inside another component's
// transaction, and only ever read back in sequence order.
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// AppendInTx persists a history entry within an existing transaction. The
// storage engine assigns the insertion sequence number. The INSERT only
// succeeds when the finding belongs to the scoped organization, so the
// append can never outlive the scoped write it accompanies.
func (r *HistoryRepository) AppendInTx(ctx context.Context, tx *sql.Tx, orgID shared.ID, entry *finding.HistoryEntry) error {
	scope := NewScope(orgID)
	query := `
		INSERT INTO history_entries (id, finding_id, tipo, descripcion, fecha, usuario)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE ` + scope.SubqueryPredicate("$2", 7)

	result, err := tx.ExecContext(ctx, query,
		entry.ID().String(),
		entry.FindingID().String(),
		entry.Tipo().String(),
		entry.Descripcion(),
		entry.Fecha(),
		nullString(entry.Usuario()),
		scope.Arg(),
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return finding.NewFindingNotFoundError(entry.FindingID().String())
	}
	return nil
}

// ListByFinding retrieves all entries of a finding ordered by the insertion
// sequence number, not wall-clock time.
func (r *HistoryRepository) ListByFinding(ctx context.Context, orgID, findingID shared.ID) ([]*finding.HistoryEntry, error) {
	scope := NewScope(orgID)
	query := `
		SELECT h.id, h.seq, h.finding_id, h.tipo, h.descripcion, h.fecha, h.usuario
		FROM history_entries h
		JOIN findings f ON f.id = h.finding_id
		WHERE ` + scope.Predicate("f", 1) + ` AND h.finding_id = $2
		ORDER BY h.seq ASC`

	rows, err := r.db.QueryContext(ctx, query, scope.Arg(), findingID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}
	defer rows.Close()

	var entries []*finding.HistoryEntry
	for rows.Next() {
		var (
			id      shared.ID
			seq     int64
			fID     shared.ID
			tipo    string
			desc    string
			fecha   time.Time
			usuario sql.NullString
		)
		if err := rows.Scan(&id, &seq, &fID, &tipo, &desc, &fecha, &usuario); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, finding.ReconstituteHistoryEntry(
			id, seq, fID, finding.HistoryTipo(tipo), desc, fecha, nullStringValue(usuario),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history entries: %w", err)
	}
	return entries, nil
}
