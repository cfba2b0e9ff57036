// Package handler contains the HTTP handlers that translate requests into
// application service calls and domain results into JSON.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qmshub/api/pkg/apierror"
	"github.com/qmshub/api/pkg/domain/shared"
	"github.com/qmshub/api/pkg/validator"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps any error onto the HTTP taxonomy. Validation errors from
// the request validator carry their field details; domain errors go through
// the shared mapping.
func respondError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		apierror.New(http.StatusBadRequest, apierror.CodeBadRequest, "validation failed").
			WithDetails(verrs).
			WriteJSON(w)
		return
	}

	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		apiErr.WriteJSON(w)
		return
	}

	apierror.FromDomain(err).WriteJSON(w)
}

// decodeBody decodes a JSON request body, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apierror.Wrap(err, http.StatusBadRequest, apierror.CodeBadRequest, "invalid request body")
	}
	return nil
}

// idParam parses a UUID path parameter.
func idParam(r *http.Request, name string) (shared.ID, error) {
	raw := chi.URLParam(r, name)
	id, err := shared.IDFromString(raw)
	if err != nil {
		return shared.ID{}, apierror.New(http.StatusBadRequest, apierror.CodeBadRequest, "invalid "+name)
	}
	return id, nil
}
