package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/passcode-go/internal/model"
)

func TestWriteErrorMapsDomainErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrGameNotFound, http.StatusNotFound, CodeGameNotFound},
		{fmt.Errorf("%w: game_x", model.ErrGameNotFound), http.StatusNotFound, CodeGameNotFound},
		{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
		{model.ErrGameFull, http.StatusConflict, CodeGameFull},
		{model.ErrNotYourTurn, http.StatusConflict, CodeNotYourTurn},
		{model.ErrGameNotStarted, http.StatusConflict, CodeGameNotStarted},
		{model.ErrNumberAlreadyLocked, http.StatusConflict, CodeNumberAlreadyLocked},
		{model.ErrGameAlreadyCompleted, http.StatusConflict, CodeGameAlreadyCompleted},
		{model.ErrPlayerNotInGame, http.StatusForbidden, CodePlayerNotInGame},
		{model.ErrInvalidNumberFormat, http.StatusBadRequest, CodeInvalidNumberFormat},
		{model.ErrInvalidPlayerName, http.StatusBadRequest, CodeInvalidPlayerName},
		{NewInvalidRequestError("bad json"), http.StatusBadRequest, CodeInvalidRequest},
		{NewNotFoundError(), http.StatusNotFound, CodeNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
			assert.Equal(t, tt.status, Status(tt.err))
		})
	}
}

func TestValidationErrorsKeepDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.ValidateNumber("12a4"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error.Message, "digits")
}

func TestInternalErrorsHideDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("pq: password authentication failed"))

	assert.NotContains(t, rr.Body.String(), "password")
}
