package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/domain/identity"
	"github.com/qmshub/api/pkg/domain/shared"
	"github.com/qmshub/api/pkg/pagination"
)

func adminContext() identity.TenantContext {
	return identity.TenantContext{
		OrganizationID: shared.NewID(),
		UserID:         "user-1",
		Role:           identity.RoleAdmin,
	}
}

func newTestFindingService(repo *findingRepoStub, tagRepo *tagRepoStub, historyRepo *historyRepoStub, tx *txStub) *FindingService {
	tx.journals = append(tx.journals, repo, tagRepo, historyRepo)
	return NewFindingService(repo, tagRepo, historyRepo, tx, testLogger())
}

func TestCreateFinding(t *testing.T) {
	t.Run("creates in initial estado with creation history entry", func(t *testing.T) {
		repo := newFindingRepoStub()
		history := &historyRepoStub{}
		svc := newTestFindingService(repo, &tagRepoStub{}, history, newTxStub())
		tcx := adminContext()

		f, err := svc.CreateFinding(context.Background(), tcx, CreateFindingInput{
			Numero:    "NC-001",
			Titulo:    "Desviación en control de calidad",
			Prioridad: "alta",
		})
		require.NoError(t, err)

		assert.Equal(t, finding.EstadoDetectada, f.Estado())
		assert.Equal(t, finding.StageDeteccion, f.Stage())
		require.Len(t, history.entries, 1)
		assert.Equal(t, finding.HistoryCreacion, history.entries[0].Tipo())
		assert.Equal(t, "user-1", history.entries[0].Usuario())
	})

	t.Run("employee may create", func(t *testing.T) {
		repo := newFindingRepoStub()
		svc := newTestFindingService(repo, &tagRepoStub{}, &historyRepoStub{}, newTxStub())
		tcx := adminContext()
		tcx.Role = identity.RoleEmployee

		_, err := svc.CreateFinding(context.Background(), tcx, CreateFindingInput{
			Numero:    "NC-001",
			Titulo:    "Hallazgo",
			Prioridad: "baja",
		})
		assert.NoError(t, err)
	})

	t.Run("duplicate numero within organization conflicts", func(t *testing.T) {
		repo := newFindingRepoStub()
		svc := newTestFindingService(repo, &tagRepoStub{}, &historyRepoStub{}, newTxStub())
		tcx := adminContext()

		input := CreateFindingInput{Numero: "NC-001", Titulo: "Hallazgo", Prioridad: "media"}
		_, err := svc.CreateFinding(context.Background(), tcx, input)
		require.NoError(t, err)

		_, err = svc.CreateFinding(context.Background(), tcx, input)
		assert.True(t, shared.IsConflict(err))
	})

	t.Run("same numero in another organization is fine", func(t *testing.T) {
		repo := newFindingRepoStub()
		svc := newTestFindingService(repo, &tagRepoStub{}, &historyRepoStub{}, newTxStub())

		input := CreateFindingInput{Numero: "NC-001", Titulo: "Hallazgo", Prioridad: "media"}
		_, err := svc.CreateFinding(context.Background(), adminContext(), input)
		require.NoError(t, err)
		_, err = svc.CreateFinding(context.Background(), adminContext(), input)
		assert.NoError(t, err)
	})

	t.Run("invalid prioridad is a validation error", func(t *testing.T) {
		svc := newTestFindingService(newFindingRepoStub(), &tagRepoStub{}, &historyRepoStub{}, newTxStub())

		_, err := svc.CreateFinding(context.Background(), adminContext(), CreateFindingInput{
			Numero:    "NC-001",
			Titulo:    "Hallazgo",
			Prioridad: "urgente",
		})
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("failed transaction leaves nothing behind", func(t *testing.T) {
		repo := newFindingRepoStub()
		tagRepo := &tagRepoStub{}
		history := &historyRepoStub{appendErr: errors.New("disk full")}
		svc := newTestFindingService(repo, tagRepo, history, newTxStub())
		tcx := adminContext()

		_, err := svc.CreateFinding(context.Background(), tcx, CreateFindingInput{
			Numero:    "NC-001",
			Titulo:    "Hallazgo",
			Prioridad: "alta",
			Tags:      []TagInput{{Type: "norma", ID: shared.NewID().String()}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInternal)

		// Neither the finding nor its tags survive the rolled-back unit.
		assert.Empty(t, repo.byID)
		assert.Empty(t, tagRepo.tags)
		assert.Empty(t, history.entries)

		result, err := svc.ListFindings(context.Background(), tcx, finding.Filter{}, finding.ListOptions{}, pagination.New(1, 10))
		require.NoError(t, err)
		assert.Empty(t, result.Data)
	})

	t.Run("commit failure leaves nothing behind", func(t *testing.T) {
		repo := newFindingRepoStub()
		tagRepo := &tagRepoStub{}
		history := &historyRepoStub{}
		tx := newTxStub()
		tx.commitErr = errors.New("broken pipe")
		svc := newTestFindingService(repo, tagRepo, history, tx)

		_, err := svc.CreateFinding(context.Background(), adminContext(), CreateFindingInput{
			Numero:    "NC-001",
			Titulo:    "Hallazgo",
			Prioridad: "alta",
			Tags:      []TagInput{{Type: "proceso", ID: shared.NewID().String()}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInternal)
		assert.Empty(t, repo.byID)
		assert.Empty(t, tagRepo.tags)
		assert.Empty(t, history.entries)
	})

	t.Run("tags persist with the finding", func(t *testing.T) {
		tagRepo := &tagRepoStub{}
		svc := newTestFindingService(newFindingRepoStub(), tagRepo, &historyRepoStub{}, newTxStub())

		_, err := svc.CreateFinding(context.Background(), adminContext(), CreateFindingInput{
			Numero:    "NC-001",
			Titulo:    "Hallazgo",
			Prioridad: "alta",
			Tags: []TagInput{
				{Type: "norma", ID: shared.NewID().String()},
				{Type: "proceso", ID: shared.NewID().String()},
			},
		})
		require.NoError(t, err)
		assert.Len(t, tagRepo.tags, 2)
	})
}

func TestGetFinding(t *testing.T) {
	t.Run("foreign tenant reads as not found", func(t *testing.T) {
		repo := newFindingRepoStub()
		svc := newTestFindingService(repo, &tagRepoStub{}, &historyRepoStub{}, newTxStub())

		owner := adminContext()
		f, err := svc.CreateFinding(context.Background(), owner, CreateFindingInput{
			Numero:    "NC-001",
			Titulo:    "Hallazgo",
			Prioridad: "alta",
		})
		require.NoError(t, err)

		_, err = svc.GetFinding(context.Background(), adminContext(), f.ID())
		assert.True(t, shared.IsNotFound(err))

		got, err := svc.GetFinding(context.Background(), owner, f.ID())
		require.NoError(t, err)
		assert.Equal(t, f.ID(), got.ID())
	})
}

func TestTransitionFinding(t *testing.T) {
	setup := func(t *testing.T, role identity.Role) (*FindingService, *findingRepoStub, *historyRepoStub, identity.TenantContext, *finding.Finding) {
		t.Helper()
		repo := newFindingRepoStub()
		history := &historyRepoStub{}
		svc := newTestFindingService(repo, &tagRepoStub{}, history, newTxStub())

		tcx := adminContext()
		f, err := svc.CreateFinding(context.Background(), tcx, CreateFindingInput{
			Numero:    "NC-001",
			Titulo:    "Hallazgo",
			Prioridad: "alta",
		})
		require.NoError(t, err)
		tcx.Role = role
		return svc, repo, history, tcx, f
	}

	t.Run("moves to the successor and appends an estado entry", func(t *testing.T) {
		svc, repo, history, tcx, f := setup(t, identity.RoleAdmin)

		got, err := svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoEnAnalisis)
		require.NoError(t, err)

		assert.Equal(t, finding.EstadoEnAnalisis, got.Estado())
		assert.Equal(t, finding.StageTratamiento, got.Stage())
		assert.Equal(t, 1, repo.estadoWrites)
		require.Len(t, history.entries, 2)
		assert.Equal(t, finding.HistoryEstado, history.entries[1].Tipo())
	})

	t.Run("skipping a sub-state is illegal", func(t *testing.T) {
		svc, _, _, tcx, f := setup(t, identity.RoleAdmin)

		_, err := svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoPlanDefinido)
		assert.ErrorIs(t, err, finding.ErrIllegalTransition)
	})

	t.Run("same-state transition is illegal", func(t *testing.T) {
		svc, _, _, tcx, f := setup(t, identity.RoleAdmin)

		_, err := svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoDetectada)
		assert.ErrorIs(t, err, finding.ErrIllegalTransition)
	})

	t.Run("backward transition is illegal", func(t *testing.T) {
		svc, _, _, tcx, f := setup(t, identity.RoleAdmin)

		_, err := svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoEnAnalisis)
		require.NoError(t, err)
		_, err = svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoDetectada)
		assert.ErrorIs(t, err, finding.ErrIllegalTransition)
	})

	t.Run("employee may leave detection but not treatment", func(t *testing.T) {
		svc, _, _, tcx, f := setup(t, identity.RoleEmployee)

		_, err := svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoEnAnalisis)
		require.NoError(t, err)

		_, err = svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoPlanDefinido)
		assert.True(t, shared.IsForbidden(err))
	})

	t.Run("manager may close from the last treatment sub-state", func(t *testing.T) {
		svc, _, _, tcx, f := setup(t, identity.RoleAdmin)
		for _, target := range []finding.Estado{finding.EstadoEnAnalisis, finding.EstadoPlanDefinido, finding.EstadoEnEjecucion} {
			_, err := svc.TransitionFinding(context.Background(), tcx, f.ID(), target)
			require.NoError(t, err)
		}

		tcx.Role = identity.RoleEmployee
		_, err := svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoCerrada)
		assert.True(t, shared.IsForbidden(err))

		tcx.Role = identity.RoleManager
		_, err = svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoCerrada)
		assert.NoError(t, err)
	})

	t.Run("two writers from the same estado: one succeeds, one conflicts", func(t *testing.T) {
		svc, repo, history, tcx, f := setup(t, identity.RoleAdmin)

		// The competing writer commits between this caller's read and its
		// estado write, exactly the lost-update window the CAS guards.
		repo.beforeEstadoWrite = func() {
			_, err := svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoEnAnalisis)
			require.NoError(t, err)
		}

		_, err := svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoEnAnalisis)
		assert.True(t, shared.IsConflict(err))

		got, err := svc.GetFinding(context.Background(), tcx, f.ID())
		require.NoError(t, err)
		assert.Equal(t, finding.EstadoEnAnalisis, got.Estado())
		assert.Equal(t, 1, repo.estadoWrites)
		require.Len(t, history.entries, 2) // creation plus the one committed transition
	})

	t.Run("foreign tenant cannot transition", func(t *testing.T) {
		svc, _, _, _, f := setup(t, identity.RoleAdmin)

		_, err := svc.TransitionFinding(context.Background(), adminContext(), f.ID(), finding.EstadoEnAnalisis)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestReopenFinding(t *testing.T) {
	closeFinding := func(t *testing.T, svc *FindingService, tcx identity.TenantContext, f *finding.Finding) {
		t.Helper()
		for _, target := range []finding.Estado{
			finding.EstadoEnAnalisis, finding.EstadoPlanDefinido,
			finding.EstadoEnEjecucion, finding.EstadoCerrada,
		} {
			_, err := svc.TransitionFinding(context.Background(), tcx, f.ID(), target)
			require.NoError(t, err)
		}
	}

	t.Run("admin reopens a closed finding into analysis", func(t *testing.T) {
		repo := newFindingRepoStub()
		history := &historyRepoStub{}
		svc := newTestFindingService(repo, &tagRepoStub{}, history, newTxStub())
		tcx := adminContext()

		f, err := svc.CreateFinding(context.Background(), tcx, CreateFindingInput{
			Numero: "NC-001", Titulo: "Hallazgo", Prioridad: "alta",
		})
		require.NoError(t, err)
		closeFinding(t, svc, tcx, f)

		got, err := svc.ReopenFinding(context.Background(), tcx, f.ID(), "reincidencia")
		require.NoError(t, err)
		assert.Equal(t, finding.EstadoEnAnalisis, got.Estado())

		last := history.entries[len(history.entries)-1]
		assert.Equal(t, finding.HistoryEstado, last.Tipo())
		assert.Contains(t, last.Descripcion(), "Reapertura")
		assert.Contains(t, last.Descripcion(), "reincidencia")
	})

	t.Run("manager may not reopen", func(t *testing.T) {
		repo := newFindingRepoStub()
		svc := newTestFindingService(repo, &tagRepoStub{}, &historyRepoStub{}, newTxStub())
		tcx := adminContext()

		f, err := svc.CreateFinding(context.Background(), tcx, CreateFindingInput{
			Numero: "NC-001", Titulo: "Hallazgo", Prioridad: "alta",
		})
		require.NoError(t, err)
		closeFinding(t, svc, tcx, f)

		tcx.Role = identity.RoleManager
		_, err = svc.ReopenFinding(context.Background(), tcx, f.ID(), "")
		assert.True(t, shared.IsForbidden(err))
	})

	t.Run("reopening an open finding is illegal", func(t *testing.T) {
		repo := newFindingRepoStub()
		svc := newTestFindingService(repo, &tagRepoStub{}, &historyRepoStub{}, newTxStub())
		tcx := adminContext()

		f, err := svc.CreateFinding(context.Background(), tcx, CreateFindingInput{
			Numero: "NC-001", Titulo: "Hallazgo", Prioridad: "alta",
		})
		require.NoError(t, err)

		_, err = svc.ReopenFinding(context.Background(), tcx, f.ID(), "")
		assert.ErrorIs(t, err, finding.ErrIllegalTransition)
	})
}

func TestListHistory(t *testing.T) {
	t.Run("history of a foreign finding is not found, not empty", func(t *testing.T) {
		repo := newFindingRepoStub()
		svc := newTestFindingService(repo, &tagRepoStub{}, &historyRepoStub{}, newTxStub())

		f, err := svc.CreateFinding(context.Background(), adminContext(), CreateFindingInput{
			Numero: "NC-001", Titulo: "Hallazgo", Prioridad: "alta",
		})
		require.NoError(t, err)

		_, err = svc.ListHistory(context.Background(), adminContext(), f.ID())
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("entries come back in insertion order", func(t *testing.T) {
		repo := newFindingRepoStub()
		history := &historyRepoStub{}
		svc := newTestFindingService(repo, &tagRepoStub{}, history, newTxStub())
		tcx := adminContext()

		f, err := svc.CreateFinding(context.Background(), tcx, CreateFindingInput{
			Numero: "NC-001", Titulo: "Hallazgo", Prioridad: "alta",
		})
		require.NoError(t, err)
		_, err = svc.TransitionFinding(context.Background(), tcx, f.ID(), finding.EstadoEnAnalisis)
		require.NoError(t, err)

		entries, err := svc.ListHistory(context.Background(), tcx, f.ID())
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, finding.HistoryCreacion, entries[0].Tipo())
		assert.Equal(t, finding.HistoryEstado, entries[1].Tipo())
		assert.Less(t, entries[0].Seq(), entries[1].Seq())
	})
}

func TestUpdateFinding(t *testing.T) {
	t.Run("empty fields keep current values and estado never moves", func(t *testing.T) {
		repo := newFindingRepoStub()
		svc := newTestFindingService(repo, &tagRepoStub{}, &historyRepoStub{}, newTxStub())
		tcx := adminContext()

		f, err := svc.CreateFinding(context.Background(), tcx, CreateFindingInput{
			Numero: "NC-001", Titulo: "Original", Descripcion: "detalle", Prioridad: "alta",
		})
		require.NoError(t, err)

		got, err := svc.UpdateFinding(context.Background(), tcx, f.ID(), UpdateFindingInput{
			Titulo: "Actualizado",
		})
		require.NoError(t, err)
		assert.Equal(t, "Actualizado", got.Titulo())
		assert.Equal(t, "detalle", got.Descripcion())
		assert.Equal(t, finding.EstadoDetectada, got.Estado())
	})
}
