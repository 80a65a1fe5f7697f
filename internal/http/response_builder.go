package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"saldo/internal/core"
	"saldo/internal/identity"
	"saldo/internal/ledger"
	"saldo/internal/log"
)

// JSONResponseBuilder provides a fluent API for writing JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	data       any
}

// NewJSONResponse creates a builder with a 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Write sends the response. A nil payload with 204 writes no body.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.data != nil {
		_ = json.NewEncoder(w).Encode(b.data)
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

const (
	kindNotReady     = "not_ready"
	kindUnauthorized = "unauthorized"
	kindBadRequest   = "bad_request"
)

// ErrorResponse maps err onto a status code and an error body. Internal
// details of persistence and unexpected failures are not echoed.
func ErrorResponse(err error) *JSONResponseBuilder {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorResponse(http.StatusUnprocessableEntity, core.KindValidation, verr.Error(), verr.Field)
	case errors.Is(err, ledger.ErrNotReady):
		return errorResponse(http.StatusConflict, kindNotReady, "Ledger is loading, retry shortly", "")
	case errors.Is(err, identity.ErrNoIdentity), errors.Is(err, ledger.ErrNoOwner):
		return errorResponse(http.StatusUnauthorized, kindUnauthorized, "No identity on request", "")
	}

	switch kind := core.Kind(err); kind {
	case core.KindAuthorization:
		return errorResponse(http.StatusForbidden, kind, "Transaction belongs to another owner", "")
	case core.KindPersistence:
		return errorResponse(http.StatusBadGateway, kind, "Remote store unavailable", "")
	default:
		return errorResponse(http.StatusInternalServerError, core.KindInternal, "Internal error", "")
	}
}

// BadRequestError reports a body that could not be decoded.
func BadRequestError(message string) *JSONResponseBuilder {
	return errorResponse(http.StatusBadRequest, kindBadRequest, message, "")
}

func errorResponse(status int, kind, message, field string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(status).
		Data(errorBody{Error: errorDetail{Kind: kind, Message: message, Field: field}})
}

// writeError logs and writes err. Client errors log at Warn, the rest at
// Error.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := ErrorResponse(err)
	fields := log.NewFields().WithOperation(op).WithError(err, core.Kind(err)).ToSlice()
	logger := log.FromContext(r.Context())
	if resp.statusCode >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", fields...)
	} else {
		logger.WarnContext(r.Context(), "Request rejected", fields...)
	}
	resp.Write(w)
}
