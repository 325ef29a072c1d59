package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"lottery/models"
	"lottery/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON parses an optional JSON body; an empty body leaves v untouched
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "INVALID_BODY"})
		return false
	}
	return true
}

func errorCode(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": code})
}

// writeServiceError translates the core's named outcomes into HTTP responses.
// Every expected failure has a distinct code; anything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var already *models.AlreadyParticipatedError
	switch {
	case errors.As(err, &already):
		writeJSON(w, http.StatusConflict, map[string]any{
			"ok":    false,
			"error": "ALREADY_PARTICIPATED",
			"pid":   already.PID,
			"win":   already.Win,
		})
	case errors.Is(err, service.ErrActivityNotOpen):
		errorCode(w, http.StatusForbidden, "ACTIVITY_NOT_OPEN")
	case errors.Is(err, service.ErrNoIdentity):
		errorCode(w, http.StatusBadRequest, "NO_PID")
	case errors.Is(err, service.ErrInvalidChoice):
		errorCode(w, http.StatusBadRequest, "INVALID_CHOICE")
	case errors.Is(err, models.ErrRoundNotFound):
		errorCode(w, http.StatusNotFound, "ROUND_NOT_FOUND")
	case errors.Is(err, models.ErrParticipantNotFound):
		errorCode(w, http.StatusNotFound, "PARTICIPANT_NOT_FOUND")
	case errors.Is(err, service.ErrInvalidWinSpec):
		errorCode(w, http.StatusBadRequest, "INVALID_WIN_SPEC")
	case errors.Is(err, service.ErrInvalidActivityState):
		errorCode(w, http.StatusBadRequest, "INVALID_STATE")
	default:
		errorCode(w, http.StatusInternalServerError, "INTERNAL_ERROR")
	}
}
