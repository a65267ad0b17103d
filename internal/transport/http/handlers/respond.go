package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vedran77/campusconnect/internal/domain"
	"github.com/vedran77/campusconnect/internal/service"
	"github.com/vedran77/campusconnect/pkg/logger"
	"github.com/vedran77/campusconnect/pkg/validator"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}

// writeServiceError maps the service layer's sentinel errors onto the error
// envelope. Anything unrecognised is logged and reported as INTERNAL.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeValidationErrors(w, verrs)

	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Account not found")
	case errors.Is(err, service.ErrListingNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case errors.Is(err, service.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Application not found")
	case errors.Is(err, service.ErrThreadNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Thread not found")
	case errors.Is(err, service.ErrObjectNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "File not found")

	case errors.Is(err, service.ErrNotListingOwner):
		writeError(w, http.StatusForbidden, "NOT_LISTING_OWNER", "Only the listing owner can do this")
	case errors.Is(err, service.ErrNotPoster):
		writeError(w, http.StatusForbidden, "ROLE_REQUIRED", "Only posters can do this")
	case errors.Is(err, service.ErrNotCandidate):
		writeError(w, http.StatusForbidden, "ROLE_REQUIRED", "Only candidates can do this")
	case errors.Is(err, service.ErrNotParticipant):
		writeError(w, http.StatusForbidden, "NOT_PARTICIPANT", "You are not part of this thread")

	case errors.Is(err, service.ErrDuplicateApplication):
		writeError(w, http.StatusConflict, "DUPLICATE_APPLICATION", "You have already applied to this listing")
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "INVALID_TRANSITION", "This application has already been decided")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")

	case errors.Is(err, service.ErrInvalidCreds):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")

	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be shortlisted, accepted or rejected")
	case errors.Is(err, service.ErrInvalidSort):
		writeError(w, http.StatusBadRequest, "INVALID_SORT", "Sort must be score or recent")
	case errors.Is(err, service.ErrCannotMessageSelf):
		writeError(w, http.StatusBadRequest, "CANNOT_MESSAGE_SELF", "Cannot start a thread with yourself")
	case errors.Is(err, domain.ErrUnknownValue):
		writeError(w, http.StatusBadRequest, "INVALID_VALUE", err.Error())

	default:
		log.Error(r.Context(), op+" failed", logger.Err(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}
