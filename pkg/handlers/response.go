package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/campusconnect/places-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// ValidationErrorResponse writes a 400 with the field-keyed violations so
// clients can render each message against the offending input.
func ValidationErrorResponse(w http.ResponseWriter, verr *apperrors.ValidationError) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	return json.NewEncoder(w).Encode(map[string]any{
		"error":  "validation_failed",
		"fields": verr.Fields,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteServiceError maps the service error taxonomy onto HTTP. Validation and
// permission failures are deliberately distinct categories: one means "fix the
// input", the other "you are not allowed".
func WriteServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if verr, ok := apperrors.AsValidationError(err); ok {
		_ = ValidationErrorResponse(w, verr)
		return
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		_ = ErrorResponse(w, http.StatusForbidden, "permission_denied", "you do not have permission to perform this action")
	case errors.Is(err, apperrors.ErrHasChildren):
		_ = ErrorResponse(w, http.StatusConflict, "has_children", apperrors.ErrHasChildren.Error())
	case errors.Is(err, apperrors.ErrUpdateNotPending):
		_ = ErrorResponse(w, http.StatusConflict, "update_not_pending", apperrors.ErrUpdateNotPending.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
