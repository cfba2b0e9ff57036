package finding

import (
	"fmt"
	"time"

	"github.com/qmshub/api/pkg/domain/shared"
)

// Finding represents a recorded non-conformance tracked through the quality
// workflow. The organization binding is immutable after creation and the
// estado only changes through workflow transitions.
type Finding struct {
	id              shared.ID
	organizationID  shared.ID
	numero          string
	titulo          string
	descripcion     string
	origen          string
	categoria       string
	requisito       string
	prioridad       Prioridad
	responsable     string
	fechaRegistro   time.Time
	estado          Estado
	accionInmediata string
	createdAt       time.Time
	updatedAt       time.Time
}

// NewFinding creates a finding in the initial sub-state of the detection
// stage.
func NewFinding(
	organizationID shared.ID,
	numero string,
	titulo string,
	descripcion string,
	origen string,
	categoria string,
	requisito string,
	prioridad Prioridad,
	responsable string,
) (*Finding, error) {
	if organizationID.IsZero() {
		return nil, fmt.Errorf("%w: organization ID is required", shared.ErrValidation)
	}
	if numero == "" {
		return nil, fmt.Errorf("%w: numero is required", shared.ErrValidation)
	}
	if titulo == "" {
		return nil, fmt.Errorf("%w: titulo is required", shared.ErrValidation)
	}
	if !prioridad.IsValid() {
		return nil, fmt.Errorf("%w: invalid prioridad", shared.ErrValidation)
	}

	now := time.Now().UTC()
	return &Finding{
		id:             shared.NewID(),
		organizationID: organizationID,
		numero:         numero,
		titulo:         titulo,
		descripcion:    descripcion,
		origen:         origen,
		categoria:      categoria,
		requisito:      requisito,
		prioridad:      prioridad,
		responsable:    responsable,
		fechaRegistro:  now,
		estado:         InitialEstado,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstitute recreates a Finding from persistence.
func Reconstitute(
	id shared.ID,
	organizationID shared.ID,
	numero string,
	titulo string,
	descripcion string,
	origen string,
	categoria string,
	requisito string,
	prioridad Prioridad,
	responsable string,
	fechaRegistro time.Time,
	estado Estado,
	accionInmediata string,
	createdAt, updatedAt time.Time,
) *Finding {
	return &Finding{
		id:              id,
		organizationID:  organizationID,
		numero:          numero,
		titulo:          titulo,
		descripcion:     descripcion,
		origen:          origen,
		categoria:       categoria,
		requisito:       requisito,
		prioridad:       prioridad,
		responsable:     responsable,
		fechaRegistro:   fechaRegistro,
		estado:          estado,
		accionInmediata: accionInmediata,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ID returns the finding ID.
func (f *Finding) ID() shared.ID { return f.id }

// OrganizationID returns the owning organization.
func (f *Finding) OrganizationID() shared.ID { return f.organizationID }

// Numero returns the human-facing code, unique within the organization.
func (f *Finding) Numero() string { return f.numero }

// Titulo returns the title.
func (f *Finding) Titulo() string { return f.titulo }

// Descripcion returns the description.
func (f *Finding) Descripcion() string { return f.descripcion }

// Origen returns where the non-conformance was detected.
func (f *Finding) Origen() string { return f.origen }

// Categoria returns the category.
func (f *Finding) Categoria() string { return f.categoria }

// Requisito returns the unmet requirement reference.
func (f *Finding) Requisito() string { return f.requisito }

// Prioridad returns the priority.
func (f *Finding) Prioridad() Prioridad { return f.prioridad }

// Responsable returns the person responsible for the finding.
func (f *Finding) Responsable() string { return f.responsable }

// FechaRegistro returns the registration date.
func (f *Finding) FechaRegistro() time.Time { return f.fechaRegistro }

// Estado returns the current workflow sub-state.
func (f *Finding) Estado() Estado { return f.estado }

// Stage returns the stage derived from the current estado.
func (f *Finding) Stage() Stage { return f.estado.Stage() }

// AccionInmediata returns the optional immediate-containment note.
func (f *Finding) AccionInmediata() string { return f.accionInmediata }

// CreatedAt returns the creation timestamp.
func (f *Finding) CreatedAt() time.Time { return f.createdAt }

// UpdatedAt returns the last update timestamp.
func (f *Finding) UpdatedAt() time.Time { return f.updatedAt }

// SetAccionInmediata records the immediate-containment note.
func (f *Finding) SetAccionInmediata(text string) {
	f.accionInmediata = text
	f.updatedAt = time.Now().UTC()
}

// UpdateDetails applies plain field edits. Estado and organization are never
// touched here; empty inputs leave the current value in place.
func (f *Finding) UpdateDetails(titulo, descripcion, origen, categoria, requisito, responsable string, prioridad Prioridad) error {
	if prioridad != "" && !prioridad.IsValid() {
		return fmt.Errorf("%w: invalid prioridad", shared.ErrValidation)
	}
	if titulo != "" {
		f.titulo = titulo
	}
	if descripcion != "" {
		f.descripcion = descripcion
	}
	if origen != "" {
		f.origen = origen
	}
	if categoria != "" {
		f.categoria = categoria
	}
	if requisito != "" {
		f.requisito = requisito
	}
	if responsable != "" {
		f.responsable = responsable
	}
	if prioridad != "" {
		f.prioridad = prioridad
	}
	f.updatedAt = time.Now().UTC()
	return nil
}

// TransitionTo moves the finding to the immediate successor sub-state.
// Anything else, including a same-state no-op, is rejected.
func (f *Finding) TransitionTo(target Estado) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: unknown estado %q", shared.ErrValidation, target.String())
	}
	if !CanTransition(f.estado, target) {
		return NewIllegalTransitionError(f.estado, target)
	}
	f.estado = target
	f.updatedAt = time.Now().UTC()
	return nil
}

// Reopen moves a closed finding back to the reopen target. The caller is
// responsible for the admin-only authorization and the dedicated audit
// entry.
func (f *Finding) Reopen() error {
	if f.estado != TerminalEstado {
		return NewIllegalTransitionError(f.estado, ReopenTarget)
	}
	f.estado = ReopenTarget
	f.updatedAt = time.Now().UTC()
	return nil
}
