package http

import (
	"encoding/json"
	"net/http"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeForbidden          = "forbidden"
	codeInvalidRequestBody = "invalid_request_body"
	codeValidation         = "validation_failed"
	codeConflict           = "extent_conflict"
	codeState              = "state_rejected"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses:
// validation 400, not-found 404, state 422, conflict 409.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case domain.IsNotFound(err), err == domain.ErrInvalidID:
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case domain.IsState(err):
		writeError(w, http.StatusUnprocessableEntity, codeState, err.Error())
	case domain.IsConflict(err):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case err == domain.ErrNoResourcesRequested:
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
