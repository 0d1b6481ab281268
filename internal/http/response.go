package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type listEnvelope struct {
	Data  any `json:"data"`
	Total int `json:"total"`
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, dataEnvelope{Data: v})
}

func writeList(w http.ResponseWriter, v any, total int) {
	writeJSON(w, http.StatusOK, listEnvelope{Data: v, Total: total})
}

// writeDomainError maps the error taxonomy onto status codes: validation
// 400, conflict 409, not found 404, anything else an opaque 500 with the
// underlying message in details.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: err.Error()})
	case errors.Is(err, core.ErrConflict):
		writeJSON(w, http.StatusConflict, errorEnvelope{Error: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorEnvelope{Error: "not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{
			Error:   "internal server error",
			Details: err.Error(),
		})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: msg})
}
