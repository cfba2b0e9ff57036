package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/qmshub/api/internal/metrics"
	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/domain/identity"
	"github.com/qmshub/api/pkg/domain/shared"
	"github.com/qmshub/api/pkg/logger"
)

// ActionService is the action ledger: it attaches remediation actions to
// findings under the stage constraint and tracks their own completion state.
type ActionService struct {
	repo        finding.ActionRepository
	findingRepo finding.Repository
	historyRepo finding.HistoryRepository
	tx          TxRunner
	logger      *logger.Logger
}

// NewActionService creates a new ActionService.
func NewActionService(
	repo finding.ActionRepository,
	findingRepo finding.Repository,
	historyRepo finding.HistoryRepository,
	tx TxRunner,
	log *logger.Logger,
) *ActionService {
	return &ActionService{
		repo:        repo,
		findingRepo: findingRepo,
		historyRepo: historyRepo,
		tx:          tx,
		logger:      log.With("service", "action"),
	}
}

// AttachActionInput represents the input for attaching an action.
type AttachActionInput struct {
	Tipo        string    `json:"tipo" validate:"required,action_tipo"`
	Descripcion string    `json:"descripcion" validate:"required,min=1,max=4000"`
	Fecha       time.Time `json:"fecha"`
}

// AttachAction attaches an action to a finding. Immediate actions are only
// attachable while the finding's derived stage is still detection;
// corrective actions only once it has reached treatment. The action and its
// history entry commit as one unit.
func (s *ActionService) AttachAction(ctx context.Context, tcx identity.TenantContext, findingID shared.ID, input AttachActionInput) (*finding.Action, error) {
	tipo, err := finding.ParseActionTipo(input.Tipo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	f, err := s.findingRepo.GetByID(ctx, tcx.OrganizationID, findingID)
	if err != nil {
		return nil, s.storageErr(err, tcx, findingID, "attach")
	}

	op := identity.OpActionAttachInmediata
	if tipo == finding.ActionCorrectiva {
		op = identity.OpActionAttachCorrectiva
	}
	if !identity.Authorize(tcx, op, identity.Resource{OrganizationID: f.OrganizationID()}) {
		return nil, fmt.Errorf("%w: role %s cannot attach %s actions", shared.ErrForbidden, tcx.Role, tipo)
	}

	stage := f.Stage()
	switch tipo {
	case finding.ActionInmediata:
		if stage != finding.StageDeteccion {
			return nil, finding.NewInvalidActionForStageError(tipo, stage)
		}
	case finding.ActionCorrectiva:
		if stage == finding.StageDeteccion {
			return nil, finding.NewInvalidActionForStageError(tipo, stage)
		}
	}

	a, err := finding.NewAction(findingID, tipo, input.Descripcion, input.Fecha)
	if err != nil {
		return nil, err
	}

	entry, err := finding.NewHistoryEntry(findingID, finding.HistoryAccion,
		fmt.Sprintf("Acción %s registrada: %s", tipo, input.Descripcion), tcx.UserID)
	if err != nil {
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(tx *sql.Tx) error {
		if err := s.repo.CreateInTx(ctx, tx, tcx.OrganizationID, a); err != nil {
			return err
		}
		return s.historyRepo.AppendInTx(ctx, tx, tcx.OrganizationID, entry)
	})
	if err != nil {
		return nil, s.storageErr(err, tcx, findingID, "attach")
	}

	metrics.ActionsAttachedTotal.WithLabelValues(tcx.OrganizationID.String(), tipo.String()).Inc()
	s.logger.Info("action attached",
		"organization_id", tcx.OrganizationID.String(),
		"finding_id", findingID.String(),
		"action_id", a.ID().String(),
		"tipo", tipo.String(),
	)
	return a, nil
}

// UpdateActionState mutates only the action's own estado, independent of the
// owning finding's workflow position.
func (s *ActionService) UpdateActionState(ctx context.Context, tcx identity.TenantContext, actionID shared.ID, estado string) (*finding.Action, error) {
	parsed, err := finding.ParseActionEstado(estado)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	a, err := s.repo.GetByID(ctx, tcx.OrganizationID, actionID)
	if err != nil {
		return nil, s.storageErr(err, tcx, actionID, "update_state")
	}

	if !identity.Authorize(tcx, identity.OpActionUpdateState, identity.Resource{OrganizationID: tcx.OrganizationID}) {
		return nil, fmt.Errorf("%w: role %s cannot update action state", shared.ErrForbidden, tcx.Role)
	}

	if err := a.UpdateEstado(parsed); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateEstado(ctx, tcx.OrganizationID, a); err != nil {
		return nil, s.storageErr(err, tcx, actionID, "update_state")
	}
	return a, nil
}

// ListActions retrieves all actions of a finding, oldest first.
func (s *ActionService) ListActions(ctx context.Context, tcx identity.TenantContext, findingID shared.ID) ([]*finding.Action, error) {
	if _, err := s.findingRepo.GetByID(ctx, tcx.OrganizationID, findingID); err != nil {
		return nil, s.storageErr(err, tcx, findingID, "list")
	}
	actions, err := s.repo.ListByFinding(ctx, tcx.OrganizationID, findingID)
	if err != nil {
		return nil, s.storageErr(err, tcx, findingID, "list")
	}
	return actions, nil
}

func (s *ActionService) storageErr(err error, tcx identity.TenantContext, id shared.ID, op string) error {
	if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrConflict) ||
		errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrForbidden) {
		return err
	}
	classified := shared.ClassifyStorageErr(err)
	if errors.Is(classified, shared.ErrInternal) {
		s.logger.Error("storage failure",
			"organization_id", tcx.OrganizationID.String(),
			"id", id.String(),
			"operation", op,
			"error", err,
		)
	}
	return classified
}
