package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/qmshub/api/internal/app"
	"github.com/qmshub/api/internal/infra/http/middleware"
	"github.com/qmshub/api/pkg/apierror"
	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/logger"
	"github.com/qmshub/api/pkg/pagination"
	"github.com/qmshub/api/pkg/validator"
)

// FindingHandler serves the finding lifecycle endpoints.
type FindingHandler struct {
	service   *app.FindingService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewFindingHandler creates a new FindingHandler.
func NewFindingHandler(service *app.FindingService, v *validator.Validator, log *logger.Logger) *FindingHandler {
	return &FindingHandler{service: service, validator: v, logger: log}
}

// FindingResponse is the JSON shape of a finding.
type FindingResponse struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	Numero          string    `json:"numero"`
	Titulo          string    `json:"titulo"`
	Descripcion     string    `json:"descripcion,omitempty"`
	Origen          string    `json:"origen,omitempty"`
	Categoria       string    `json:"categoria,omitempty"`
	Requisito       string    `json:"requisito_incumplido,omitempty"`
	Prioridad       string    `json:"prioridad"`
	Responsable     string    `json:"responsable,omitempty"`
	FechaRegistro   time.Time `json:"fecha_registro"`
	Estado          string    `json:"estado"`
	Stage           string    `json:"stage"`
	AccionInmediata string    `json:"accion_inmediata,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toFindingResponse(f *finding.Finding) FindingResponse {
	return FindingResponse{
		ID:              f.ID().String(),
		OrganizationID:  f.OrganizationID().String(),
		Numero:          f.Numero(),
		Titulo:          f.Titulo(),
		Descripcion:     f.Descripcion(),
		Origen:          f.Origen(),
		Categoria:       f.Categoria(),
		Requisito:       f.Requisito(),
		Prioridad:       f.Prioridad().String(),
		Responsable:     f.Responsable(),
		FechaRegistro:   f.FechaRegistro(),
		Estado:          f.Estado().String(),
		Stage:           f.Stage().String(),
		AccionInmediata: f.AccionInmediata(),
		CreatedAt:       f.CreatedAt(),
		UpdatedAt:       f.UpdatedAt(),
	}
}

// Create handles POST /api/v1/findings.
func (h *FindingHandler) Create(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	var input app.CreateFindingInput
	if err := decodeBody(r, &input); err != nil {
		respondError(w, err)
		return
	}
	if err := h.validator.Validate(input); err != nil {
		respondError(w, err)
		return
	}

	f, err := h.service.CreateFinding(r.Context(), tcx, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toFindingResponse(f))
}

// Get handles GET /api/v1/findings/{findingID}.
func (h *FindingHandler) Get(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	id, err := idParam(r, "findingID")
	if err != nil {
		respondError(w, err)
		return
	}

	f, err := h.service.GetFinding(r.Context(), tcx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFindingResponse(f))
}

// List handles GET /api/v1/findings.
func (h *FindingHandler) List(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	filter, err := parseFindingFilter(r)
	if err != nil {
		respondError(w, err)
		return
	}

	opts := finding.ListOptions{}
	if sortStr := r.URL.Query().Get("sort"); sortStr != "" {
		opts.Sort = pagination.NewSortOption(finding.AllowedSortFields()).Parse(sortStr)
	}

	page := paginationFromQuery(r)
	result, err := h.service.ListFindings(r.Context(), tcx, filter, opts, page)
	if err != nil {
		respondError(w, err)
		return
	}

	responses := make([]FindingResponse, 0, len(result.Data))
	for _, f := range result.Data {
		responses = append(responses, toFindingResponse(f))
	}
	respondJSON(w, http.StatusOK, pagination.Result[FindingResponse]{
		Data:       responses,
		Total:      result.Total,
		Page:       result.Page,
		PerPage:    result.PerPage,
		TotalPages: result.TotalPages,
	})
}

// Update handles PATCH /api/v1/findings/{findingID}.
func (h *FindingHandler) Update(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	id, err := idParam(r, "findingID")
	if err != nil {
		respondError(w, err)
		return
	}

	var input app.UpdateFindingInput
	if err := decodeBody(r, &input); err != nil {
		respondError(w, err)
		return
	}
	if err := h.validator.Validate(input); err != nil {
		respondError(w, err)
		return
	}

	f, err := h.service.UpdateFinding(r.Context(), tcx, id, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFindingResponse(f))
}

// TransitionRequest is the body of a workflow transition.
type TransitionRequest struct {
	Estado string `json:"estado" validate:"required,estado"`
}

// Transition handles POST /api/v1/findings/{findingID}/transition.
func (h *FindingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	id, err := idParam(r, "findingID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req TransitionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, err)
		return
	}

	target, err := finding.ParseEstado(req.Estado)
	if err != nil {
		respondError(w, apierror.New(http.StatusBadRequest, apierror.CodeBadRequest, "invalid estado"))
		return
	}

	f, err := h.service.TransitionFinding(r.Context(), tcx, id, target)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFindingResponse(f))
}

// ReopenRequest is the body of a reopen call.
type ReopenRequest struct {
	Motivo string `json:"motivo" validate:"max=2000"`
}

// Reopen handles POST /api/v1/findings/{findingID}/reopen.
func (h *FindingHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	id, err := idParam(r, "findingID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req ReopenRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondError(w, err)
		return
	}

	f, err := h.service.ReopenFinding(r.Context(), tcx, id, req.Motivo)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toFindingResponse(f))
}

// HistoryEntryResponse is the JSON shape of an audit entry.
type HistoryEntryResponse struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	FindingID   string    `json:"finding_id"`
	Tipo        string    `json:"tipo"`
	Descripcion string    `json:"descripcion"`
	Fecha       time.Time `json:"fecha"`
	Usuario     string    `json:"usuario,omitempty"`
}

// ListHistory handles GET /api/v1/findings/{findingID}/history.
func (h *FindingHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	id, err := idParam(r, "findingID")
	if err != nil {
		respondError(w, err)
		return
	}

	entries, err := h.service.ListHistory(r.Context(), tcx, id)
	if err != nil {
		respondError(w, err)
		return
	}

	responses := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, HistoryEntryResponse{
			ID:          e.ID().String(),
			Seq:         e.Seq(),
			FindingID:   e.FindingID().String(),
			Tipo:        e.Tipo().String(),
			Descripcion: e.Descripcion(),
			Fecha:       e.Fecha(),
			Usuario:     e.Usuario(),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": responses})
}

// TagResponse is the JSON shape of a tag link.
type TagResponse struct {
	FindingID string `json:"finding_id"`
	Type      string `json:"type"`
	TagID     string `json:"id"`
}

// ListTags handles GET /api/v1/findings/{findingID}/tags.
func (h *FindingHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tcx := middleware.MustTenantContext(r.Context())

	id, err := idParam(r, "findingID")
	if err != nil {
		respondError(w, err)
		return
	}

	tags, err := h.service.ListTags(r.Context(), tcx, id)
	if err != nil {
		respondError(w, err)
		return
	}

	responses := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		responses = append(responses, TagResponse{
			FindingID: t.FindingID.String(),
			Type:      t.Type.String(),
			TagID:     t.TagID.String(),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": responses})
}

func parseFindingFilter(r *http.Request) (finding.Filter, error) {
	q := r.URL.Query()
	filter := finding.NewFilter()

	if raw := q.Get("estado"); raw != "" {
		var estados []finding.Estado
		for _, part := range strings.Split(raw, ",") {
			estado, err := finding.ParseEstado(strings.TrimSpace(part))
			if err != nil {
				return finding.Filter{}, apierror.New(http.StatusBadRequest, apierror.CodeBadRequest, "invalid estado filter")
			}
			estados = append(estados, estado)
		}
		filter = filter.WithEstados(estados...)
	}

	if raw := q.Get("prioridad"); raw != "" {
		var prioridades []finding.Prioridad
		for _, part := range strings.Split(raw, ",") {
			prioridad, err := finding.ParsePrioridad(strings.TrimSpace(part))
			if err != nil {
				return finding.Filter{}, apierror.New(http.StatusBadRequest, apierror.CodeBadRequest, "invalid prioridad filter")
			}
			prioridades = append(prioridades, prioridad)
		}
		filter = filter.WithPrioridades(prioridades...)
	}

	if categoria := q.Get("categoria"); categoria != "" {
		filter = filter.WithCategoria(categoria)
	}
	if origen := q.Get("origen"); origen != "" {
		filter = filter.WithOrigen(origen)
	}
	if responsable := q.Get("responsable"); responsable != "" {
		filter = filter.WithResponsable(responsable)
	}
	if search := q.Get("search"); search != "" {
		filter = filter.WithSearch(search)
	}

	return filter, nil
}

func paginationFromQuery(r *http.Request) pagination.Pagination {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return pagination.New(page, perPage)
}
