package finding

import (
	"fmt"
	"time"

	"github.com/qmshub/api/pkg/domain/shared"
)

// HistoryEntry is an immutable audit record of a finding's creation,
// transitions, or attached actions. Entries are ordered by the insertion
// sequence number assigned by storage, not by wall-clock time.
type HistoryEntry struct {
	id          shared.ID
	seq         int64
	findingID   shared.ID
	tipo        HistoryTipo
	descripcion string
	fecha       time.Time
	usuario     string
}

// NewHistoryEntry creates a history entry. The sequence number is zero until
// storage assigns it.
func NewHistoryEntry(findingID shared.ID, tipo HistoryTipo, descripcion, usuario string) (*HistoryEntry, error) {
	if findingID.IsZero() {
		return nil, fmt.Errorf("%w: finding ID is required", shared.ErrValidation)
	}
	if !tipo.IsValid() {
		return nil, fmt.Errorf("%w: invalid history tipo", shared.ErrValidation)
	}
	if descripcion == "" {
		return nil, fmt.Errorf("%w: descripcion is required", shared.ErrValidation)
	}

	return &HistoryEntry{
		id:          shared.NewID(),
		findingID:   findingID,
		tipo:        tipo,
		descripcion: descripcion,
		fecha:       time.Now().UTC(),
		usuario:     usuario,
	}, nil
}

// ReconstituteHistoryEntry recreates a HistoryEntry from persistence.
func ReconstituteHistoryEntry(
	id shared.ID,
	seq int64,
	findingID shared.ID,
	tipo HistoryTipo,
	descripcion string,
	fecha time.Time,
	usuario string,
) *HistoryEntry {
	return &HistoryEntry{
		id:          id,
		seq:         seq,
		findingID:   findingID,
		tipo:        tipo,
		descripcion: descripcion,
		fecha:       fecha,
		usuario:     usuario,
	}
}

// ID returns the entry ID.
func (h *HistoryEntry) ID() shared.ID { return h.id }

// Seq returns the storage-assigned insertion sequence number.
func (h *HistoryEntry) Seq() int64 { return h.seq }

// FindingID returns the owning finding.
func (h *HistoryEntry) FindingID() shared.ID { return h.findingID }

// Tipo returns the entry classification.
func (h *HistoryEntry) Tipo() HistoryTipo { return h.tipo }

// Descripcion returns the entry description.
func (h *HistoryEntry) Descripcion() string { return h.descripcion }

// Fecha returns the entry timestamp.
func (h *HistoryEntry) Fecha() time.Time { return h.fecha }

// Usuario returns who caused the entry.
func (h *HistoryEntry) Usuario() string { return h.usuario }
