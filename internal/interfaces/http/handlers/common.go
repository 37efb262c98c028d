// Common helper functions for HTTP handlers.

package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a structured error response.  The status is derived from
// the AppError code; anything else is masked as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		appErr = errors.New(errors.ErrCodeInternal, "internal server error")
	}
	resp := ErrorResponse{
		Code:      string(appErr.Code),
		Message:   appErr.Message,
		Detail:    appErr.Detail,
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	writeJSON(w, errors.HTTPStatusForCode(appErr.Code), resp)
}

// decodeJSON reads the request body into dst.  Bodies cut short by
// http.MaxBytesReader map to ErrCodeInputTooLarge.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errors.Newf(errors.ErrCodeInputTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		case err == io.EOF:
			return errors.New(errors.ErrCodeBadRequest, "request body is empty")
		default:
			return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body")
		}
	}
	return nil
}

//Personal.AI order the ending
