package finding

// The workflow is configuration data owned by this package: an ordered list
// of estados and a total estado→stage table. Nothing else in the repository
// re-derives stage membership.

// canonicalOrder is the mandated sub-state sequence. A transition is legal
// iff the target is the immediate successor of the source.
var canonicalOrder = []Estado{
	EstadoDetectada,
	EstadoEnAnalisis,
	EstadoPlanDefinido,
	EstadoEnEjecucion,
	EstadoCerrada,
}

// stageByEstado maps every estado to exactly one stage. Total by
// construction; StageOf panics on an estado missing from the table so a gap
// fails loudly in tests rather than silently mislabeling a finding.
var stageByEstado = map[Estado]Stage{
	EstadoDetectada:    StageDeteccion,
	EstadoEnAnalisis:   StageTratamiento,
	EstadoPlanDefinido: StageTratamiento,
	EstadoEnEjecucion:  StageTratamiento,
	EstadoCerrada:      StageVerificacion,
}

// InitialEstado is the sub-state every finding is created in.
const InitialEstado = EstadoDetectada

// TerminalEstado is the closing sub-state of the verification stage.
const TerminalEstado = EstadoCerrada

// ReopenTarget is where an admin-initiated reopen places a closed finding:
// back at the start of treatment, never skipping detection history.
const ReopenTarget = EstadoEnAnalisis

// StageOf returns the stage an estado belongs to.
func StageOf(e Estado) Stage {
	stage, ok := stageByEstado[e]
	if !ok {
		panic("finding: estado without stage mapping: " + e.String())
	}
	return stage
}

// Stage returns the derived stage of the estado.
func (e Estado) Stage() Stage {
	return StageOf(e)
}

// Successor returns the next estado in the canonical order. The second
// return value is false for the terminal estado.
func Successor(e Estado) (Estado, bool) {
	for i, s := range canonicalOrder {
		if s == e {
			if i+1 < len(canonicalOrder) {
				return canonicalOrder[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// CanTransition reports whether from→to is a legal forward transition.
// Same-state transitions and backward or skipping moves are rejected.
func CanTransition(from, to Estado) bool {
	next, ok := Successor(from)
	return ok && next == to
}

// IsTerminal reports whether the estado is the end of the workflow.
func (e Estado) IsTerminal() bool {
	_, ok := Successor(e)
	return e.IsValid() && !ok
}
