package apierror

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/domain/shared"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   Code
	}{
		{"illegal transition", finding.NewIllegalTransitionError(finding.EstadoDetectada, finding.EstadoCerrada), http.StatusUnprocessableEntity, CodeIllegalTransition},
		{"invalid action for stage", finding.NewInvalidActionForStageError(finding.ActionInmediata, finding.StageTratamiento), http.StatusUnprocessableEntity, CodeInvalidActionForStage},
		{"validation", fmt.Errorf("%w: numero is required", shared.ErrValidation), http.StatusBadRequest, CodeBadRequest},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", fmt.Errorf("%w: nope", shared.ErrForbidden), http.StatusForbidden, CodeForbidden},
		{"not found", fmt.Errorf("%w: finding", shared.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"conflict", fmt.Errorf("%w: estado changed", shared.ErrConflict), http.StatusConflict, CodeConflict},
		{"timeout", fmt.Errorf("%w: deadline", shared.ErrTimeout), http.StatusGatewayTimeout, CodeTimeout},
		{"internal", fmt.Errorf("%w: boom", shared.ErrInternal), http.StatusInternalServerError, CodeInternalError},
		{"unclassified", fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDomain(tt.err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestInternalDetailsNotLeaked(t *testing.T) {
	err := FromDomain(fmt.Errorf("%w: pq: connection refused host=10.0.0.5", shared.ErrInternal))
	assert.Equal(t, "internal error", err.Message)

	rec := httptest.NewRecorder()
	err.WriteJSON(rec)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	New(http.StatusConflict, CodeConflict, "estado changed").WriteJSON(rec)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"code":"CONFLICT"`)
}
