package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/domain/shared"
)

// TagRepository implements finding.TagRepository using PostgreSQL.
type TagRepository struct {
	db *DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// CreateInTx persists a tag within an existing transaction.
func (r *TagRepository) CreateInTx(ctx context.Context, tx *sql.Tx, tag finding.Tag) error {
	query := `
		INSERT INTO finding_tags (finding_id, tag_type, tag_id)
		VALUES ($1, $2, $3)
	`

	_, err := tx.ExecContext(ctx, query,
		tag.FindingID.String(),
		tag.Type.String(),
		tag.TagID.String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tag already attached", shared.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return finding.NewFindingNotFoundError(tag.FindingID.String())
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// ListByFinding retrieves all tags of a finding.
func (r *TagRepository) ListByFinding(ctx context.Context, orgID, findingID shared.ID) ([]finding.Tag, error) {
	scope := NewScope(orgID)
	query := `
		SELECT t.finding_id, t.tag_type, t.tag_id
		FROM finding_tags t
		JOIN findings f ON f.id = t.finding_id
		WHERE ` + scope.Predicate("f", 1) + ` AND t.finding_id = $2
		ORDER BY t.tag_type, t.tag_id`

	rows, err := r.db.QueryContext(ctx, query, scope.Arg(), findingID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []finding.Tag
	for rows.Next() {
		var (
			fID     shared.ID
			tagType string
			tagID   shared.ID
		)
		if err := rows.Scan(&fID, &tagType, &tagID); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, finding.Tag{FindingID: fID, Type: finding.TagType(tagType), TagID: tagID})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}
