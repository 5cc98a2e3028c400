package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"atm-api/internal/model"
)

// statusForError сопоставляет доменные ошибки с HTTP-кодами.
func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrAuthFailed):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrCardLocked):
		return http.StatusLocked
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateCard), errors.Is(err, model.ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, model.ErrInsufficientFunds), errors.Is(err, model.ErrSameAccount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
