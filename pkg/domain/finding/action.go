package finding

import (
	"fmt"
	"time"

	"github.com/qmshub/api/pkg/domain/shared"
)

// Action is a remediation record attached to a finding. Its tipo is fixed at
// attach time; only its own estado changes afterwards.
type Action struct {
	id          shared.ID
	findingID   shared.ID
	tipo        ActionTipo
	descripcion string
	fecha       time.Time
	estado      ActionEstado
	createdAt   time.Time
	updatedAt   time.Time
}

// NewAction creates a pending action for a finding. Stage constraints are
// enforced by the service at attach time, where the finding's current stage
// is known.
func NewAction(findingID shared.ID, tipo ActionTipo, descripcion string, fecha time.Time) (*Action, error) {
	if findingID.IsZero() {
		return nil, fmt.Errorf("%w: finding ID is required", shared.ErrValidation)
	}
	if !tipo.IsValid() {
		return nil, fmt.Errorf("%w: invalid action tipo", shared.ErrValidation)
	}
	if descripcion == "" {
		return nil, fmt.Errorf("%w: descripcion is required", shared.ErrValidation)
	}
	if fecha.IsZero() {
		fecha = time.Now().UTC()
	}

	now := time.Now().UTC()
	return &Action{
		id:          shared.NewID(),
		findingID:   findingID,
		tipo:        tipo,
		descripcion: descripcion,
		fecha:       fecha,
		estado:      ActionPendiente,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstituteAction recreates an Action from persistence.
func ReconstituteAction(
	id shared.ID,
	findingID shared.ID,
	tipo ActionTipo,
	descripcion string,
	fecha time.Time,
	estado ActionEstado,
	createdAt, updatedAt time.Time,
) *Action {
	return &Action{
		id:          id,
		findingID:   findingID,
		tipo:        tipo,
		descripcion: descripcion,
		fecha:       fecha,
		estado:      estado,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the action ID.
func (a *Action) ID() shared.ID { return a.id }

// FindingID returns the owning finding.
func (a *Action) FindingID() shared.ID { return a.findingID }

// Tipo returns the action tipo.
func (a *Action) Tipo() ActionTipo { return a.tipo }

// Descripcion returns the description.
func (a *Action) Descripcion() string { return a.descripcion }

// Fecha returns the planned or executed date.
func (a *Action) Fecha() time.Time { return a.fecha }

// Estado returns the action's own completion state.
func (a *Action) Estado() ActionEstado { return a.estado }

// CreatedAt returns the creation timestamp.
func (a *Action) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns the last update timestamp.
func (a *Action) UpdatedAt() time.Time { return a.updatedAt }

// UpdateEstado changes the action's completion state, independent of the
// owning finding's workflow.
func (a *Action) UpdateEstado(estado ActionEstado) error {
	if !estado.IsValid() {
		return fmt.Errorf("%w: invalid action estado", shared.ErrValidation)
	}
	a.estado = estado
	a.updatedAt = time.Now().UTC()
	return nil
}
