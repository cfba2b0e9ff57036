package finding

import (
	"errors"
	"fmt"

	"github.com/qmshub/api/pkg/domain/shared"
)

// Workflow-specific sentinels. They sit outside the generic taxonomy in
// pkg/domain/shared because callers handle them differently: both are
// terminal failures that must never be retried.
var (
	ErrIllegalTransition     = errors.New("illegal transition")
	ErrInvalidActionForStage = errors.New("invalid action for stage")
)

// IllegalTransitionError reports a rejected workflow move.
type IllegalTransitionError struct {
	From Estado
	To   Estado
}

// NewIllegalTransitionError creates an IllegalTransitionError.
func NewIllegalTransitionError(from, to Estado) *IllegalTransitionError {
	return &IllegalTransitionError{From: from, To: to}
}

// Error implements the error interface.
func (e *IllegalTransitionError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("illegal transition: %s to itself is a no-op", e.From)
	}
	return fmt.Sprintf("illegal transition: %s -> %s is not the next sub-state", e.From, e.To)
}

// Unwrap lets errors.Is match ErrIllegalTransition.
func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// InvalidActionForStageError reports an action attach rejected by the
// owning finding's current stage.
type InvalidActionForStageError struct {
	Tipo  ActionTipo
	Stage Stage
}

// NewInvalidActionForStageError creates an InvalidActionForStageError.
func NewInvalidActionForStageError(tipo ActionTipo, stage Stage) *InvalidActionForStageError {
	return &InvalidActionForStageError{Tipo: tipo, Stage: stage}
}

// Error implements the error interface.
func (e *InvalidActionForStageError) Error() string {
	return fmt.Sprintf("action tipo %s cannot be attached while the finding is in stage %s", e.Tipo, e.Stage)
}

// Unwrap lets errors.Is match ErrInvalidActionForStage.
func (e *InvalidActionForStageError) Unwrap() error {
	return ErrInvalidActionForStage
}

// NewFindingNotFoundError reports an absent or foreign-tenant finding.
// The two cases are deliberately indistinguishable.
func NewFindingNotFoundError(id string) error {
	return fmt.Errorf("%w: finding %s", shared.ErrNotFound, id)
}

// NewNumeroExistsError reports a duplicate numero within an organization.
func NewNumeroExistsError(numero string) error {
	return fmt.Errorf("%w: numero %s already used in this organization", shared.ErrConflict, numero)
}

// NewActionNotFoundError reports an absent or foreign-tenant action.
func NewActionNotFoundError(id string) error {
	return fmt.Errorf("%w: action %s", shared.ErrNotFound, id)
}
