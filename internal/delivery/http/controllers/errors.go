package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"eventcatalog/internal/delivery/http/helpers"
	"eventcatalog/internal/delivery/http/middleware"
	"eventcatalog/internal/domain"
)

// writeServiceError maps a service error to its HTTP status and message.
// Unmapped errors are logged and answered with a generic 500.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.MsgUnauthorized)
	case errors.As(err, &verr):
		helpers.WriteJSONError(w, http.StatusBadRequest, verr.Reason)
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrInvitationRequired):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.MsgInvitationRequired)
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.MsgForbidden)
	case errors.Is(err, domain.ErrEventFull):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.MsgEventFull)
	default:
		logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"method", r.Method,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"err", err,
		)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.MsgInternalError)
	}
}

// eventIDFromPath returns the canonical eventID path value, writing 400 when it is not a UUID.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(r.PathValue("eventID"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.MsgInvalidEventID)
		return "", false
	}
	return id.String(), true
}

// requireIdentity returns the caller, writing 401 when the request is anonymous.
func requireIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.MsgUnauthorized)
	}
	return id, ok
}
