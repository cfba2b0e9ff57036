package finding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageMapping(t *testing.T) {
	t.Run("every estado maps to exactly one stage", func(t *testing.T) {
		expected := map[Estado]Stage{
			EstadoDetectada:    StageDeteccion,
			EstadoEnAnalisis:   StageTratamiento,
			EstadoPlanDefinido: StageTratamiento,
			EstadoEnEjecucion:  StageTratamiento,
			EstadoCerrada:      StageVerificacion,
		}
		for _, estado := range AllEstados() {
			assert.Equal(t, expected[estado], StageOf(estado), estado.String())
		}
	})

	t.Run("unmapped estado panics", func(t *testing.T) {
		assert.Panics(t, func() { StageOf(Estado("inventada")) })
	})
}

func TestSuccessor(t *testing.T) {
	tests := []struct {
		from Estado
		next Estado
		ok   bool
	}{
		{EstadoDetectada, EstadoEnAnalisis, true},
		{EstadoEnAnalisis, EstadoPlanDefinido, true},
		{EstadoPlanDefinido, EstadoEnEjecucion, true},
		{EstadoEnEjecucion, EstadoCerrada, true},
		{EstadoCerrada, "", false},
	}
	for _, tt := range tests {
		next, ok := Successor(tt.from)
		assert.Equal(t, tt.ok, ok, tt.from.String())
		assert.Equal(t, tt.next, next, tt.from.String())
	}
}

func TestCanTransition(t *testing.T) {
	t.Run("only the immediate successor is legal", func(t *testing.T) {
		all := AllEstados()
		for _, from := range all {
			next, hasNext := Successor(from)
			for _, to := range all {
				legal := hasNext && to == next
				assert.Equal(t, legal, CanTransition(from, to), "%s -> %s", from, to)
			}
		}
	})

	t.Run("same-state is never legal", func(t *testing.T) {
		for _, e := range AllEstados() {
			assert.False(t, CanTransition(e, e), e.String())
		}
	})
}

func TestTerminal(t *testing.T) {
	assert.True(t, EstadoCerrada.IsTerminal())
	for _, e := range []Estado{EstadoDetectada, EstadoEnAnalisis, EstadoPlanDefinido, EstadoEnEjecucion} {
		assert.False(t, e.IsTerminal(), e.String())
	}
	assert.False(t, Estado("inventada").IsTerminal())
}

func TestWorkflowConstants(t *testing.T) {
	assert.Equal(t, EstadoDetectada, InitialEstado)
	assert.Equal(t, EstadoCerrada, TerminalEstado)

	// The reopen target sits at the start of treatment.
	require.Equal(t, EstadoEnAnalisis, ReopenTarget)
	assert.Equal(t, StageTratamiento, StageOf(ReopenTarget))
}
