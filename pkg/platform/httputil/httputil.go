package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "certledger/pkg/domain-errors"
)

// Envelope is the uniform JSON response body for every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes a success envelope with the given status and payload.
func WriteJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Message: message, Data: data})
}

// WriteResult writes an envelope whose success flag the caller controls; used
// for outcomes like "not issued" that are terminal results, not errors.
func WriteResult(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteError centralizes domain error translation to HTTP responses.
// It translates transport-agnostic domain errors into HTTP status codes and
// the shared failure envelope.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status := DomainCodeToHTTPStatus(domainErr.Code)
		msg := domainErr.Message
		if msg == "" {
			msg = string(domainErr.Code)
		}
		WriteResult(w, status, Envelope{Success: false, Message: msg})
		return
	}

	// Fallback for unexpected errors; never leak internals to the caller.
	WriteResult(w, http.StatusInternalServerError, Envelope{Success: false, Message: "internal error"})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeDuplicateKey:
		return http.StatusConflict
	case dErrors.CodeUnverifiedIssuer, dErrors.CodeUnregisteredStudent:
		return http.StatusForbidden
	case dErrors.CodeInsufficientFunds, dErrors.CodeContractCall, dErrors.CodeUploadFailed:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeChainDiverged, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
