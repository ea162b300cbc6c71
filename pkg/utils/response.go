package utils

import (
	"encoding/json"
	"net/http"

	"staffdesk/internal/apperr"
	"staffdesk/internal/logger"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes err with the status of its kind. Internal errors are logged
// and reported with a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		l := logger.FromContext(r.Context())
		l.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	JSON(w, kind.HTTPStatus(), ErrorResponse{
		Error:   apperr.PublicMessage(err),
		Details: apperr.Fields(err),
	})
}

// BadRequest reports a malformed body or parameter.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	Error(w, r, apperr.Validation(msg))
}
