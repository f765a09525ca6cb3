package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mcoot/passcode-go/internal/model"
)

func TestWriteErrorMarksSpanOnlyForServerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantSpan   codes.Code
	}{
		{"not found", fmt.Errorf("%w: game_9", model.ErrGameNotFound), http.StatusNotFound, codes.Unset},
		{"conflict", model.ErrNotYourTurn, http.StatusConflict, codes.Unset},
		{"storage failure", errors.New("connection refused"), http.StatusInternalServerError, codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := tracetest.NewSpanRecorder()
			provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			ctx, span := provider.Tracer("test").Start(context.Background(), "request")

			req := httptest.NewRequest(http.MethodGet, "/api/v1/games/game_9", nil).WithContext(ctx)
			rr := httptest.NewRecorder()
			writeError(rr, req, tt.err)
			span.End()

			assert.Equal(t, tt.wantStatus, rr.Code)
			ended := recorder.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, tt.wantSpan, ended[0].Status().Code)
		})
	}
}

func TestInvalidRequestKeepsDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), invalidRequest("unknown status %q", "DONE"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":{"code":"INVALID_REQUEST","message":"unknown status \"DONE\""}}`, rr.Body.String())
}
