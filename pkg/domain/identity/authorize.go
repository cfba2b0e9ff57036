package identity

import "github.com/qmshub/api/pkg/domain/shared"

// Operation identifies a mutating operation checked by the permission gate.
type Operation string

const (
	OpFindingCreate          Operation = "finding.create"
	OpFindingUpdate          Operation = "finding.update"
	OpFindingTransition      Operation = "finding.transition"
	OpFindingReopen          Operation = "finding.reopen"
	OpActionAttachInmediata  Operation = "action.attach.inmediata"
	OpActionAttachCorrectiva Operation = "action.attach.correctiva"
	OpActionUpdateState      Operation = "action.update_state"
)

// Resource describes the target of an operation. Stage is only consulted for
// workflow transitions, where the required role depends on the finding's
// current stage.
type Resource struct {
	OrganizationID shared.ID
	Stage          string
}

// minRoleByOperation is the single source of truth for operation-level
// authorization. Call sites never hardcode role comparisons.
var minRoleByOperation = map[Operation]Role{
	OpFindingCreate:          RoleEmployee,
	OpFindingUpdate:          RoleEmployee,
	OpFindingReopen:          RoleAdmin,
	OpActionAttachInmediata:  RoleEmployee,
	OpActionAttachCorrectiva: RoleManager,
	OpActionUpdateState:      RoleEmployee,
}

// minRoleByStage gates transitions by the stage the finding currently sits
// in: anyone may move a finding out of detection, treatment requires a
// manager, and leaving or re-entering verification requires an admin.
var minRoleByStage = map[string]Role{
	"deteccion":    RoleEmployee,
	"tratamiento":  RoleManager,
	"verificacion": RoleAdmin,
}

// Authorize is the permission gate: a pure role check with no I/O. It
// returns false when the resource belongs to another organization, when the
// role ranks below the operation's minimum, or when the operation or stage
// is unknown.
func Authorize(tcx TenantContext, op Operation, res Resource) bool {
	if !res.OrganizationID.IsZero() && !res.OrganizationID.Equals(tcx.OrganizationID) {
		return false
	}
	if op == OpFindingTransition {
		min, ok := minRoleByStage[res.Stage]
		if !ok {
			return false
		}
		return tcx.Role.AtLeast(min)
	}
	min, ok := minRoleByOperation[op]
	if !ok {
		return false
	}
	return tcx.Role.AtLeast(min)
}
