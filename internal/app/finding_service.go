// Package app contains the application services that orchestrate the domain,
// the repositories, and the transactional writer.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qmshub/api/internal/metrics"
	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/domain/identity"
	"github.com/qmshub/api/pkg/domain/shared"
	"github.com/qmshub/api/pkg/logger"
	"github.com/qmshub/api/pkg/pagination"
)

// TxRunner executes a unit of work as one atomic transaction. postgres.DB
// implements it; tests substitute a pass-through fake.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// FindingService handles finding lifecycle operations: creation, plain
// edits, listing, and the workflow transitions that must commit atomically
// with their audit entries.
type FindingService struct {
	repo        finding.Repository
	tagRepo     finding.TagRepository
	historyRepo finding.HistoryRepository
	tx          TxRunner
	logger      *logger.Logger
}

// NewFindingService creates a new FindingService.
func NewFindingService(
	repo finding.Repository,
	tagRepo finding.TagRepository,
	historyRepo finding.HistoryRepository,
	tx TxRunner,
	log *logger.Logger,
) *FindingService {
	return &FindingService{
		repo:        repo,
		tagRepo:     tagRepo,
		historyRepo: historyRepo,
		tx:          tx,
		logger:      log.With("service", "finding"),
	}
}

// TagInput references another domain object to link at creation time.
type TagInput struct {
	Type string `json:"type" validate:"required,tag_type"`
	ID   string `json:"id" validate:"required,uuid"`
}

// CreateFindingInput represents the input for creating a finding.
type CreateFindingInput struct {
	Numero          string     `json:"numero" validate:"required,max=50"`
	Titulo          string     `json:"titulo" validate:"required,min=1,max=500"`
	Descripcion     string     `json:"descripcion" validate:"max=4000"`
	Origen          string     `json:"origen" validate:"max=200"`
	Categoria       string     `json:"categoria" validate:"max=200"`
	Requisito       string     `json:"requisito_incumplido" validate:"max=500"`
	Prioridad       string     `json:"prioridad" validate:"required,prioridad"`
	Responsable     string     `json:"responsable" validate:"max=200"`
	AccionInmediata string     `json:"accion_inmediata" validate:"max=2000"`
	Tags            []TagInput `json:"tags" validate:"omitempty,max=50,dive"`
}

// CreateFinding creates a finding in the initial detection sub-state. The
// finding row, its tags, and the creation history entry commit as one unit:
// a fault at any point leaves nothing visible.
func (s *FindingService) CreateFinding(ctx context.Context, tcx identity.TenantContext, input CreateFindingInput) (*finding.Finding, error) {
	if !identity.Authorize(tcx, identity.OpFindingCreate, identity.Resource{OrganizationID: tcx.OrganizationID}) {
		return nil, fmt.Errorf("%w: role %s cannot create findings", shared.ErrForbidden, tcx.Role)
	}

	prioridad, err := finding.ParsePrioridad(input.Prioridad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	f, err := finding.NewFinding(
		tcx.OrganizationID,
		input.Numero,
		input.Titulo,
		input.Descripcion,
		input.Origen,
		input.Categoria,
		input.Requisito,
		prioridad,
		input.Responsable,
	)
	if err != nil {
		return nil, err
	}
	if input.AccionInmediata != "" {
		f.SetAccionInmediata(input.AccionInmediata)
	}

	tags := make([]finding.Tag, 0, len(input.Tags))
	for _, t := range input.Tags {
		tagType, err := finding.ParseTagType(t.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
		}
		tagID, err := shared.IDFromString(t.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid tag id", shared.ErrValidation)
		}
		tag, err := finding.NewTag(f.ID(), tagType, tagID)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	entry, err := finding.NewHistoryEntry(f.ID(), finding.HistoryCreacion,
		fmt.Sprintf("Hallazgo %s registrado", f.Numero()), tcx.UserID)
	if err != nil {
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(tx *sql.Tx) error {
		if err := s.repo.CreateInTx(ctx, tx, f); err != nil {
			return err
		}
		for _, tag := range tags {
			if err := s.tagRepo.CreateInTx(ctx, tx, tag); err != nil {
				return err
			}
		}
		return s.historyRepo.AppendInTx(ctx, tx, tcx.OrganizationID, entry)
	})
	if err != nil {
		return nil, s.storageErr(err, tcx, f.ID(), "create")
	}

	metrics.FindingsCreatedTotal.WithLabelValues(tcx.OrganizationID.String()).Inc()
	s.logger.Info("finding created",
		"organization_id", tcx.OrganizationID.String(),
		"finding_id", f.ID().String(),
		"numero", f.Numero(),
	)
	return f, nil
}

// GetFinding retrieves a finding scoped to the caller's organization.
func (s *FindingService) GetFinding(ctx context.Context, tcx identity.TenantContext, id shared.ID) (*finding.Finding, error) {
	f, err := s.repo.GetByID(ctx, tcx.OrganizationID, id)
	if err != nil {
		return nil, s.storageErr(err, tcx, id, "get")
	}
	return f, nil
}

// ListFindings retrieves findings with filtering, sorting, and pagination.
func (s *FindingService) ListFindings(ctx context.Context, tcx identity.TenantContext, filter finding.Filter, opts finding.ListOptions, page pagination.Pagination) (pagination.Result[*finding.Finding], error) {
	result, err := s.repo.List(ctx, tcx.OrganizationID, filter, opts, page)
	if err != nil {
		return pagination.Result[*finding.Finding]{}, s.storageErr(err, tcx, shared.ID{}, "list")
	}
	return result, nil
}

// UpdateFindingInput represents plain field edits. Empty fields keep their
// current value; estado never moves through this path.
type UpdateFindingInput struct {
	Titulo          string `json:"titulo" validate:"omitempty,min=1,max=500"`
	Descripcion     string `json:"descripcion" validate:"max=4000"`
	Origen          string `json:"origen" validate:"max=200"`
	Categoria       string `json:"categoria" validate:"max=200"`
	Requisito       string `json:"requisito_incumplido" validate:"max=500"`
	Prioridad       string `json:"prioridad" validate:"omitempty,prioridad"`
	Responsable     string `json:"responsable" validate:"max=200"`
	AccionInmediata string `json:"accion_inmediata" validate:"max=2000"`
}

// UpdateFinding applies plain field edits to a finding.
func (s *FindingService) UpdateFinding(ctx context.Context, tcx identity.TenantContext, id shared.ID, input UpdateFindingInput) (*finding.Finding, error) {
	f, err := s.repo.GetByID(ctx, tcx.OrganizationID, id)
	if err != nil {
		return nil, s.storageErr(err, tcx, id, "update")
	}

	if !identity.Authorize(tcx, identity.OpFindingUpdate, identity.Resource{OrganizationID: f.OrganizationID()}) {
		return nil, fmt.Errorf("%w: role %s cannot update findings", shared.ErrForbidden, tcx.Role)
	}

	if err := f.UpdateDetails(input.Titulo, input.Descripcion, input.Origen, input.Categoria,
		input.Requisito, input.Responsable, finding.Prioridad(input.Prioridad)); err != nil {
		return nil, err
	}
	if input.AccionInmediata != "" {
		f.SetAccionInmediata(input.AccionInmediata)
	}

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, s.storageErr(err, tcx, id, "update")
	}
	return f, nil
}

// TransitionFinding moves a finding to the immediate successor sub-state.
// The estado write carries the previously-read estado as a compare-and-swap
// guard, and the audit entry commits in the same transaction: a transition
// is never observable without its history entry or vice versa.
func (s *FindingService) TransitionFinding(ctx context.Context, tcx identity.TenantContext, id shared.ID, target finding.Estado) (*finding.Finding, error) {
	f, err := s.repo.GetByID(ctx, tcx.OrganizationID, id)
	if err != nil {
		return nil, s.storageErr(err, tcx, id, "transition")
	}

	if !identity.Authorize(tcx, identity.OpFindingTransition, identity.Resource{
		OrganizationID: f.OrganizationID(),
		Stage:          f.Stage().String(),
	}) {
		metrics.TransitionsTotal.WithLabelValues(tcx.OrganizationID.String(), target.String(), "forbidden").Inc()
		return nil, fmt.Errorf("%w: role %s cannot transition a finding in stage %s", shared.ErrForbidden, tcx.Role, f.Stage())
	}

	expected := f.Estado()
	if err := f.TransitionTo(target); err != nil {
		metrics.TransitionsTotal.WithLabelValues(tcx.OrganizationID.String(), target.String(), "illegal").Inc()
		return nil, err
	}

	entry, err := finding.NewHistoryEntry(f.ID(), finding.HistoryEstado,
		fmt.Sprintf("Cambio de estado de %s a %s", expected, target), tcx.UserID)
	if err != nil {
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(tx *sql.Tx) error {
		if err := s.repo.UpdateEstadoInTx(ctx, tx, tcx.OrganizationID, f.ID(), expected, target, f.UpdatedAt()); err != nil {
			return err
		}
		return s.historyRepo.AppendInTx(ctx, tx, tcx.OrganizationID, entry)
	})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			metrics.TransitionConflictsTotal.WithLabelValues(tcx.OrganizationID.String()).Inc()
			metrics.TransitionsTotal.WithLabelValues(tcx.OrganizationID.String(), target.String(), "conflict").Inc()
			return nil, err
		}
		return nil, s.storageErr(err, tcx, id, fmt.Sprintf("transition %s->%s", expected, target))
	}

	metrics.TransitionsTotal.WithLabelValues(tcx.OrganizationID.String(), target.String(), "success").Inc()
	s.logger.Info("finding transitioned",
		"organization_id", tcx.OrganizationID.String(),
		"finding_id", f.ID().String(),
		"from", expected.String(),
		"to", target.String(),
	)
	return f, nil
}

// ReopenFinding moves a closed finding back to the start of treatment. It is
// admin-only and audited with its own history entry, separate from the
// forward transition path.
func (s *FindingService) ReopenFinding(ctx context.Context, tcx identity.TenantContext, id shared.ID, motivo string) (*finding.Finding, error) {
	f, err := s.repo.GetByID(ctx, tcx.OrganizationID, id)
	if err != nil {
		return nil, s.storageErr(err, tcx, id, "reopen")
	}

	if !identity.Authorize(tcx, identity.OpFindingReopen, identity.Resource{OrganizationID: f.OrganizationID()}) {
		return nil, fmt.Errorf("%w: role %s cannot reopen findings", shared.ErrForbidden, tcx.Role)
	}

	expected := f.Estado()
	if err := f.Reopen(); err != nil {
		return nil, err
	}

	descripcion := fmt.Sprintf("Reapertura: estado %s vuelve a %s", expected, f.Estado())
	if motivo != "" {
		descripcion += ". Motivo: " + motivo
	}
	entry, err := finding.NewHistoryEntry(f.ID(), finding.HistoryEstado, descripcion, tcx.UserID)
	if err != nil {
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(tx *sql.Tx) error {
		if err := s.repo.UpdateEstadoInTx(ctx, tx, tcx.OrganizationID, f.ID(), expected, f.Estado(), f.UpdatedAt()); err != nil {
			return err
		}
		return s.historyRepo.AppendInTx(ctx, tx, tcx.OrganizationID, entry)
	})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			metrics.TransitionConflictsTotal.WithLabelValues(tcx.OrganizationID.String()).Inc()
			return nil, err
		}
		return nil, s.storageErr(err, tcx, id, "reopen")
	}

	s.logger.Info("finding reopened",
		"organization_id", tcx.OrganizationID.String(),
		"finding_id", f.ID().String(),
	)
	return f, nil
}

// ListHistory retrieves the audit trail of a finding in insertion order.
func (s *FindingService) ListHistory(ctx context.Context, tcx identity.TenantContext, findingID shared.ID) ([]*finding.HistoryEntry, error) {
	// The empty trail of a foreign or absent finding must read as NotFound,
	// not as an empty history.
	if _, err := s.repo.GetByID(ctx, tcx.OrganizationID, findingID); err != nil {
		return nil, s.storageErr(err, tcx, findingID, "history")
	}
	entries, err := s.historyRepo.ListByFinding(ctx, tcx.OrganizationID, findingID)
	if err != nil {
		return nil, s.storageErr(err, tcx, findingID, "history")
	}
	return entries, nil
}

// ListTags retrieves the tags of a finding.
func (s *FindingService) ListTags(ctx context.Context, tcx identity.TenantContext, findingID shared.ID) ([]finding.Tag, error) {
	if _, err := s.repo.GetByID(ctx, tcx.OrganizationID, findingID); err != nil {
		return nil, s.storageErr(err, tcx, findingID, "tags")
	}
	tags, err := s.tagRepo.ListByFinding(ctx, tcx.OrganizationID, findingID)
	if err != nil {
		return nil, s.storageErr(err, tcx, findingID, "tags")
	}
	return tags, nil
}

// storageErr classifies a failure and, for genuine storage errors, logs it
// with the tenant and finding but nothing belonging to any other tenant.
func (s *FindingService) storageErr(err error, tcx identity.TenantContext, id shared.ID, op string) error {
	if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrConflict) ||
		errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrForbidden) {
		return err
	}
	classified := shared.ClassifyStorageErr(err)
	if errors.Is(classified, shared.ErrInternal) {
		s.logger.Error("storage failure",
			"organization_id", tcx.OrganizationID.String(),
			"finding_id", id.String(),
			"operation", op,
			"error", err,
		)
	}
	return classified
}
