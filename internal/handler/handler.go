package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"menuely/internal/middleware"
	"menuely/internal/model"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code. The status is
// already sent when encoding fails, so the failure is only logged.
func writeJSON(w http.ResponseWriter, status int, data any, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

// writeError renders err as an ErrorResponse. Internal errors are logged
// with their cause and rendered without it.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	correlationID := middleware.CorrelationIDFromContext(r.Context())

	var de *model.DomainError
	if !errors.As(err, &de) {
		de = model.NewInternalError("internal server error", err)
	}

	status := statusFor(de)
	message := de.Message
	if de.Kind == model.KindInternal {
		logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("correlation_id", correlationID).
			Msg("request failed")
		message = "internal server error"
	} else {
		logger.Warn().
			Str("code", de.Code).
			Str("message", de.Message).
			Int("status", status).
			Str("correlation_id", correlationID).
			Msg("request rejected")
	}

	writeJSON(w, status, model.ErrorResponse{
		Error:         de.Code,
		Message:       message,
		CorrelationID: correlationID,
	}, logger)
}

func statusFor(de *model.DomainError) int {
	if de.Code == model.ErrCodeUnauthorised {
		return http.StatusUnauthorized
	}
	switch de.Kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var errInvalidJSON = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid request body")

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidJSON
	}
	return nil
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	return parseID("id", mux.Vars(r)["id"])
}

// queryID parses a required numeric query parameter.
func queryID(r *http.Request, name string) (int64, error) {
	return parseID(name, r.URL.Query().Get(name))
}

func parseID(name, raw string) (int64, error) {
	if raw == "" {
		return 0, model.NewValidationError("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError("invalid %s format", name)
	}
	return id, nil
}
