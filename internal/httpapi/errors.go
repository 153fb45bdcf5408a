package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/UnknownOlympus/proximity/internal/models"
	"github.com/UnknownOlympus/proximity/internal/proximity"
	"github.com/UnknownOlympus/proximity/internal/repository"
	"github.com/UnknownOlympus/proximity/internal/service"
)

// Client-facing messages.
const (
	msgAlreadyExists = "Business already exists."
	msgNotFound      = "Business not found."
	msgInvalidCoords = "Latitude must be between -90 and 90 and longitude between -180 and 180."
	msgMissingID     = "business_id is required."
	msgMissingCoords = "latitude and longitude are required."
	msgMalformedBody = "Request body must be a JSON business."
	msgMismatchedID  = "business_id does not match the path."
	msgPartialCoords = "latitude and longitude must be supplied together."
	msgQueryCoords   = "latitude and longitude query parameters must be numbers."
)

var msgInvalidRadius = "Radius must be one of: " + strings.Join(proximity.AllowedRadii(), ", ") + "."

// writeError maps a service error onto a status code and message.
// Errors without a mapping are logged and answered with a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrAlreadyExists):
		writeMessage(w, http.StatusConflict, msgAlreadyExists)
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, proximity.ErrInvalidRadius):
		writeMessage(w, http.StatusBadRequest, msgInvalidRadius)
	case errors.Is(err, models.ErrInvalidCoordinates):
		writeMessage(w, http.StatusBadRequest, msgInvalidCoords)
	case errors.Is(err, service.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, msgMissingID)
	case errors.Is(err, service.ErrMissingLocation):
		writeMessage(w, http.StatusBadRequest, msgMissingCoords)
	default:
		log.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
