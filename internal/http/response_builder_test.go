package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
	"saldo/internal/identity"
	"saldo/internal/ledger"
)

func TestJSONResponseBuilder_Write(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/abc").
		Data(map[string]string{"id": "abc"}).
		Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "/api/transactions/abc", rec.Header().Get("Location"))
	assert.JSONEq(t, `{"id":"abc"}`, rec.Body.String())
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Data("ignored").Write(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantKind  string
		wantField string
	}{
		{
			name:      "validation",
			err:       core.NewValidationError("amount", "must be greater than zero"),
			wantCode:  http.StatusUnprocessableEntity,
			wantKind:  core.KindValidation,
			wantField: "amount",
		},
		{
			name:     "authorization",
			err:      &core.AuthorizationError{TransactionID: "t1", OwnerID: "bob", RequestedBy: "alice"},
			wantCode: http.StatusForbidden,
			wantKind: core.KindAuthorization,
		},
		{
			name:     "persistence",
			err:      &core.PersistenceError{Op: "add_transaction", Err: errors.New("timeout")},
			wantCode: http.StatusBadGateway,
			wantKind: core.KindPersistence,
		},
		{
			name:     "not ready",
			err:      fmt.Errorf("add: %w", ledger.ErrNotReady),
			wantCode: http.StatusConflict,
			wantKind: kindNotReady,
		},
		{
			name:     "no identity",
			err:      identity.ErrNoIdentity,
			wantCode: http.StatusUnauthorized,
			wantKind: kindUnauthorized,
		},
		{
			name:     "unexpected",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantKind: core.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorResponse(tt.err).Write(rec)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Error.Kind)
			assert.Equal(t, tt.wantField, body.Error.Field)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestErrorResponse_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(&core.PersistenceError{Op: "load", Err: errors.New("dial tcp 10.0.0.5:443: refused")}).Write(rec)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}
