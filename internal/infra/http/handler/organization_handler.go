package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/qmshub/api/internal/app"
	"github.com/qmshub/api/internal/infra/http/middleware"
	"github.com/qmshub/api/pkg/domain/organization"
	"github.com/qmshub/api/pkg/domain/shared"
	"github.com/qmshub/api/pkg/logger"
)

// OrganizationHandler serves the read side of organizations over the tenant
// API: a caller can only fetch its own organization. Creating and listing
// tenants happens through the admin CLI, never through a tenant's token.
type OrganizationHandler struct {
	service *app.OrganizationService
	logger  *logger.Logger
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(service *app.OrganizationService, log *logger.Logger) *OrganizationHandler {
	return &OrganizationHandler{service: service, logger: log}
}

// OrganizationResponse is the JSON shape of an organization.
type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toOrganizationResponse(o *organization.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:        o.ID().String(),
		Name:      o.Name(),
		CreatedAt: o.CreatedAt(),
	}
}

// Get handles GET /api/v1/organizations/{organizationID}. Any organization
// other than the caller's own reads as absent, so tenant existence never
// leaks across organizations.
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	id, err := idParam(r, "organizationID")
	if err != nil {
		respondError(w, err)
		return
	}
	if !id.Equals(tcx.OrganizationID) {
		respondError(w, fmt.Errorf("%w: organization %s", shared.ErrNotFound, id))
		return
	}

	org, err := h.service.GetOrganization(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrganizationResponse(org))
}
