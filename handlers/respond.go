package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"takeoff/services"
)

// apiError is the JSON error body shape shared by all handlers.
type apiError struct {
	Error string `json:"error"`
}

// respondError writes a JSON error body with the given status.
func respondError(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, apiError{Error: message})
}

// respondServiceError maps the service error taxonomy onto HTTP status
// codes: validation -> 400, conflict -> 409, not found -> 404,
// anything else -> 500 with a generic body.
func respondServiceError(e *core.RequestEvent, err error) error {
	switch {
	case services.IsValidation(err):
		return respondError(e, http.StatusBadRequest, err.Error())
	case services.IsConflict(err):
		return respondError(e, http.StatusConflict, err.Error())
	case services.IsNotFound(err):
		return respondError(e, http.StatusNotFound, err.Error())
	}
	return respondError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
