package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
)

// ApiResponse : enveloppe uniforme de TOUTES les réponses.
// Succès : {success: true, statusCode, data, message}
// Échec  : {success: false, statusCode, message}
type ApiResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ApiResponse{
		Success:    status < 400,
		StatusCode: status,
		Data:       data,
		Message:    message,
	})
}

// writeError mappe la taxonomie du domaine vers un status HTTP.
// SEULE cette couche connaît HTTP ; le cœur n'a que ses kinds.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal Server Error"

	switch {
	case errors.Is(err, domain.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, err.Error()
	default:
		// Erreur interne : on logue le détail, le client n'a que le générique.
		slog.Error("unhandled error", "error", err)
	}

	writeJSON(w, status, nil, message)
}
