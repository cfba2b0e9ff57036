package handler

import (
	"net/http"
	"time"

	"github.com/qmshub/api/internal/app"
	"github.com/qmshub/api/internal/infra/http/middleware"
	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/logger"
	"github.com/qmshub/api/pkg/validator"
)

// ActionHandler serves the action ledger endpoints.
type ActionHandler struct {
	service   *app.ActionService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewActionHandler creates a new ActionHandler.
func NewActionHandler(service *app.ActionService, v *validator.Validator, log *logger.Logger) *ActionHandler {
	return &ActionHandler{service: service, validator: v, logger: log}
}

// ActionResponse is the JSON shape of an action.
type ActionResponse struct {
	ID          string    `json:"id"`
	FindingID   string    `json:"finding_id"`
	Tipo        string    `json:"tipo"`
	Descripcion string    `json:"descripcion"`
	Fecha       time.Time `json:"fecha"`
	Estado      string    `json:"estado"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toActionResponse(a *finding.Action) ActionResponse {
	return ActionResponse{
		ID:          a.ID().String(),
		FindingID:   a.FindingID().String(),
		Tipo:        a.Tipo().String(),
		Descripcion: a.Descripcion(),
		Fecha:       a.Fecha(),
		Estado:      a.Estado().String(),
		CreatedAt:   a.CreatedAt(),
		UpdatedAt:   a.UpdatedAt(),
	}
}

// Attach handles POST /api/v1/findings/{findingID}/actions.
func (h *ActionHandler) Attach(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	findingID, err := idParam(r, "findingID")
	if err != nil {
		respondError(w, err)
		return
	}

	var input app.AttachActionInput
	if err := decodeBody(r, &input); err != nil {
		respondError(w, err)
		return
	}
	if err := h.validator.Validate(input); err != nil {
		respondError(w, err)
		return
	}

	a, err := h.service.AttachAction(r.Context(), tcx, findingID, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toActionResponse(a))
}

// UpdateStateRequest is the body of an action state change.
type UpdateStateRequest struct {
	Estado string `json:"estado" validate:"required,action_estado"`
}

// UpdateState handles PATCH /api/v1/actions/{actionID}/estado.
func (h *ActionHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	actionID, err := idParam(r, "actionID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req UpdateStateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, err)
		return
	}

	a, err := h.service.UpdateActionState(r.Context(), tcx, actionID, req.Estado)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toActionResponse(a))
}

// ListByFinding handles GET /api/v1/findings/{findingID}/actions.
func (h *ActionHandler) ListByFinding(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	findingID, err := idParam(r, "findingID")
	if err != nil {
		respondError(w, err)
		return
	}

	actions, err := h.service.ListActions(r.Context(), tcx, findingID)
	if err != nil {
		respondError(w, err)
		return
	}

	responses := make([]ActionResponse, 0, len(actions))
	for _, a := range actions {
		responses = append(responses, toActionResponse(a))
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": responses})
}
