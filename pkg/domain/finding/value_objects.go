package finding

import (
	"fmt"
	"slices"
	"strings"
)

// Estado is the fine-grained workflow position of a finding. It is a closed
// enumeration: values that do not parse cannot be constructed.
type Estado string

const (
	EstadoDetectada    Estado = "detectada"
	EstadoEnAnalisis   Estado = "en_analisis"
	EstadoPlanDefinido Estado = "plan_definido"
	EstadoEnEjecucion  Estado = "en_ejecucion"
	EstadoCerrada      Estado = "cerrada"
)

// AllEstados returns every estado in canonical workflow order.
func AllEstados() []Estado {
	return []Estado{
		EstadoDetectada,
		EstadoEnAnalisis,
		EstadoPlanDefinido,
		EstadoEnEjecucion,
		EstadoCerrada,
	}
}

// IsValid checks if the estado is a member of the canonical enumeration.
func (e Estado) IsValid() bool {
	return slices.Contains(AllEstados(), e)
}

// String returns the string representation.
func (e Estado) String() string {
	return string(e)
}

// ParseEstado parses a string into an Estado.
func ParseEstado(s string) (Estado, error) {
	e := Estado(strings.ToLower(strings.TrimSpace(s)))
	if !e.IsValid() {
		return "", fmt.Errorf("invalid estado: %s", s)
	}
	return e, nil
}

// Stage is the coarse workflow phase a finding sits in. It is always derived
// from the estado and never persisted.
type Stage string

const (
	StageDeteccion    Stage = "deteccion"
	StageTratamiento  Stage = "tratamiento"
	StageVerificacion Stage = "verificacion"
)

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// Prioridad represents the priority of a finding.
type Prioridad string

const (
	PrioridadBaja    Prioridad = "baja"
	PrioridadMedia   Prioridad = "media"
	PrioridadAlta    Prioridad = "alta"
	PrioridadCritica Prioridad = "critica"
)

// AllPrioridades returns all valid priorities.
func AllPrioridades() []Prioridad {
	return []Prioridad{PrioridadBaja, PrioridadMedia, PrioridadAlta, PrioridadCritica}
}

// IsValid checks if the priority is valid.
func (p Prioridad) IsValid() bool {
	return slices.Contains(AllPrioridades(), p)
}

// String returns the string representation.
func (p Prioridad) String() string {
	return string(p)
}

// ParsePrioridad parses a string into a Prioridad.
func ParsePrioridad(s string) (Prioridad, error) {
	p := Prioridad(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid prioridad: %s", s)
	}
	return p, nil
}

// ActionTipo distinguishes immediate containment from corrective actions.
type ActionTipo string

const (
	ActionInmediata  ActionTipo = "inmediata"
	ActionCorrectiva ActionTipo = "correctiva"
)

// IsValid checks if the action tipo is valid.
func (t ActionTipo) IsValid() bool {
	return t == ActionInmediata || t == ActionCorrectiva
}

// String returns the string representation.
func (t ActionTipo) String() string {
	return string(t)
}

// ParseActionTipo parses a string into an ActionTipo.
func ParseActionTipo(s string) (ActionTipo, error) {
	t := ActionTipo(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid action tipo: %s", s)
	}
	return t, nil
}

// ActionEstado is the completion state of an action, independent of the
// owning finding's workflow.
type ActionEstado string

const (
	ActionPendiente  ActionEstado = "pendiente"
	ActionEnProceso  ActionEstado = "en_proceso"
	ActionCompletada ActionEstado = "completada"
)

// IsValid checks if the action estado is valid.
func (e ActionEstado) IsValid() bool {
	switch e {
	case ActionPendiente, ActionEnProceso, ActionCompletada:
		return true
	}
	return false
}

// String returns the string representation.
func (e ActionEstado) String() string {
	return string(e)
}

// ParseActionEstado parses a string into an ActionEstado.
func ParseActionEstado(s string) (ActionEstado, error) {
	e := ActionEstado(strings.ToLower(strings.TrimSpace(s)))
	if !e.IsValid() {
		return "", fmt.Errorf("invalid action estado: %s", s)
	}
	return e, nil
}

// HistoryTipo classifies a history entry.
type HistoryTipo string

const (
	HistoryCreacion HistoryTipo = "creacion"
	HistoryEstado   HistoryTipo = "estado"
	HistoryAccion   HistoryTipo = "accion"
)

// IsValid checks if the history tipo is valid.
func (t HistoryTipo) IsValid() bool {
	switch t {
	case HistoryCreacion, HistoryEstado, HistoryAccion:
		return true
	}
	return false
}

// String returns the string representation.
func (t HistoryTipo) String() string {
	return string(t)
}

// TagType identifies which kind of domain object a tag links to.
type TagType string

const (
	TagNorma     TagType = "norma"
	TagDocumento TagType = "documento"
	TagProceso   TagType = "proceso"
)

// IsValid checks if the tag type is valid.
func (t TagType) IsValid() bool {
	switch t {
	case TagNorma, TagDocumento, TagProceso:
		return true
	}
	return false
}

// String returns the string representation.
func (t TagType) String() string {
	return string(t)
}

// ParseTagType parses a string into a TagType.
func ParseTagType(s string) (TagType, error) {
	t := TagType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid tag type: %s", s)
	}
	return t, nil
}
