package finding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qmshub/api/pkg/domain/shared"
)

func newTestFinding(t *testing.T) *Finding {
	t.Helper()
	f, err := NewFinding(shared.NewID(), "NC-001", "Desviación en control de calidad",
		"", "auditoria", "proceso", "ISO 9001 8.7", PrioridadAlta, "calidad")
	require.NoError(t, err)
	return f
}

func TestNewFinding(t *testing.T) {
	t.Run("starts detected in the detection stage", func(t *testing.T) {
		f := newTestFinding(t)
		assert.Equal(t, EstadoDetectada, f.Estado())
		assert.Equal(t, StageDeteccion, f.Stage())
		assert.False(t, f.ID().IsZero())
		assert.False(t, f.FechaRegistro().IsZero())
	})

	t.Run("required fields", func(t *testing.T) {
		_, err := NewFinding(shared.ID{}, "NC-001", "t", "", "", "", "", PrioridadAlta, "")
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewFinding(shared.NewID(), "", "t", "", "", "", "", PrioridadAlta, "")
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewFinding(shared.NewID(), "NC-001", "", "", "", "", "", PrioridadAlta, "")
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewFinding(shared.NewID(), "NC-001", "t", "", "", "", "", Prioridad("urgente"), "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestFindingTransitionTo(t *testing.T) {
	t.Run("walks the full canonical order", func(t *testing.T) {
		f := newTestFinding(t)
		for _, target := range []Estado{EstadoEnAnalisis, EstadoPlanDefinido, EstadoEnEjecucion, EstadoCerrada} {
			require.NoError(t, f.TransitionTo(target))
			assert.Equal(t, target, f.Estado())
		}
		assert.True(t, f.Estado().IsTerminal())
	})

	t.Run("rejects skip, same-state and backward moves", func(t *testing.T) {
		f := newTestFinding(t)

		err := f.TransitionTo(EstadoPlanDefinido)
		assert.ErrorIs(t, err, ErrIllegalTransition)

		err = f.TransitionTo(EstadoDetectada)
		assert.ErrorIs(t, err, ErrIllegalTransition)

		require.NoError(t, f.TransitionTo(EstadoEnAnalisis))
		err = f.TransitionTo(EstadoDetectada)
		assert.ErrorIs(t, err, ErrIllegalTransition)

		// estado unchanged after a rejected transition
		assert.Equal(t, EstadoEnAnalisis, f.Estado())
	})

	t.Run("rejects unknown estado as validation", func(t *testing.T) {
		f := newTestFinding(t)
		err := f.TransitionTo(Estado("archivada"))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("illegal transition error names both estados", func(t *testing.T) {
		f := newTestFinding(t)
		err := f.TransitionTo(EstadoCerrada)
		require.Error(t, err)
		assert.Contains(t, err.Error(), EstadoDetectada.String())
		assert.Contains(t, err.Error(), EstadoCerrada.String())
	})
}

func TestFindingReopen(t *testing.T) {
	t.Run("only from the terminal estado", func(t *testing.T) {
		f := newTestFinding(t)
		assert.ErrorIs(t, f.Reopen(), ErrIllegalTransition)

		for _, target := range []Estado{EstadoEnAnalisis, EstadoPlanDefinido, EstadoEnEjecucion, EstadoCerrada} {
			require.NoError(t, f.TransitionTo(target))
		}
		require.NoError(t, f.Reopen())
		assert.Equal(t, ReopenTarget, f.Estado())
	})
}

func TestUpdateDetails(t *testing.T) {
	t.Run("empty inputs keep current values", func(t *testing.T) {
		f := newTestFinding(t)
		require.NoError(t, f.UpdateDetails("", "", "", "", "", "", ""))
		assert.Equal(t, "Desviación en control de calidad", f.Titulo())
		assert.Equal(t, PrioridadAlta, f.Prioridad())
	})

	t.Run("never touches estado", func(t *testing.T) {
		f := newTestFinding(t)
		require.NoError(t, f.TransitionTo(EstadoEnAnalisis))
		require.NoError(t, f.UpdateDetails("Nuevo titulo", "", "", "", "", "", PrioridadBaja))
		assert.Equal(t, EstadoEnAnalisis, f.Estado())
		assert.Equal(t, "Nuevo titulo", f.Titulo())
		assert.Equal(t, PrioridadBaja, f.Prioridad())
	})

	t.Run("rejects an unknown prioridad", func(t *testing.T) {
		f := newTestFinding(t)
		err := f.UpdateDetails("", "", "", "", "", "", Prioridad("urgente"))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestNewAction(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		a, err := NewAction(shared.NewID(), ActionInmediata, "Segregar lote", time.Time{})
		require.NoError(t, err)
		assert.Equal(t, ActionPendiente, a.Estado())
		assert.False(t, a.Fecha().IsZero())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewAction(shared.ID{}, ActionInmediata, "x", time.Time{})
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewAction(shared.NewID(), ActionTipo("preventiva"), "x", time.Time{})
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewAction(shared.NewID(), ActionInmediata, "", time.Time{})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestNewHistoryEntry(t *testing.T) {
	t.Run("seq is zero until storage assigns it", func(t *testing.T) {
		e, err := NewHistoryEntry(shared.NewID(), HistoryCreacion, "Hallazgo registrado", "user-1")
		require.NoError(t, err)
		assert.Zero(t, e.Seq())
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewHistoryEntry(shared.ID{}, HistoryCreacion, "x", "")
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewHistoryEntry(shared.NewID(), HistoryTipo("auditoria"), "x", "")
		assert.ErrorIs(t, err, shared.ErrValidation)

		_, err = NewHistoryEntry(shared.NewID(), HistoryCreacion, "", "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestNewTag(t *testing.T) {
	_, err := NewTag(shared.NewID(), TagNorma, shared.NewID())
	assert.NoError(t, err)

	_, err = NewTag(shared.ID{}, TagNorma, shared.NewID())
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewTag(shared.NewID(), TagType("etiqueta"), shared.NewID())
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewTag(shared.NewID(), TagNorma, shared.ID{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
