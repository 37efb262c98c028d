// HTTP handlers for the comparison engine.

package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/MacroCompare/internal/application/comparison"
	"github.com/turtacn/MacroCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MacroCompare/pkg/errors"
)

// ComparisonService is the subset of *comparison.Service the handlers use.
type ComparisonService interface {
	Compare(ctx context.Context, code1, code2 string) *comparison.ComparisonResult
	Explain(ctx context.Context, code string) (*comparison.ExplainResult, error)
	Features(code string) *comparison.FeatureReport
}

// ComparisonHandler handles /api/v1 comparison requests.
type ComparisonHandler struct {
	svc    ComparisonService
	logger logging.Logger
}

// NewComparisonHandler creates a new ComparisonHandler.
func NewComparisonHandler(svc ComparisonService, logger logging.Logger) *ComparisonHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ComparisonHandler{
		svc:    svc,
		logger: logger.Named("comparison_handler"),
	}
}

// CompareRequest is the request body for POST /api/v1/compare.  Both fields
// must be present; empty strings are valid and scored as blank macros.
type CompareRequest struct {
	Code1 *string `json:"code1"`
	Code2 *string `json:"code2"`
}

// CodeRequest is the request body for single-macro endpoints.
type CodeRequest struct {
	Code *string `json:"code"`
}

// Compare handles POST /api/v1/compare
func (h *ComparisonHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeJSON(r, &req); err != nil {
		h.reject(w, r, err)
		return
	}
	if req.Code1 == nil || req.Code2 == nil {
		h.reject(w, r, errors.New(errors.ErrCodeInvalidInput, "code1 and code2 are required"))
		return
	}

	result := h.svc.Compare(r.Context(), *req.Code1, *req.Code2)
	writeJSON(w, http.StatusOK, result)
}

// Explain handles POST /api/v1/explain
func (h *ComparisonHandler) Explain(w http.ResponseWriter, r *http.Request) {
	code, ok := h.decodeCode(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Explain(r.Context(), code)
	if err != nil {
		h.reject(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Features handles POST /api/v1/features
func (h *ComparisonHandler) Features(w http.ResponseWriter, r *http.Request) {
	code, ok := h.decodeCode(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Features(code))
}

func (h *ComparisonHandler) decodeCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req CodeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.reject(w, r, err)
		return "", false
	}
	if req.Code == nil {
		h.reject(w, r, errors.New(errors.ErrCodeInvalidInput, "code is required"))
		return "", false
	}
	return *req.Code, true
}

func (h *ComparisonHandler) reject(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.WithContext(r.Context()).Warn("rejected request",
		logging.String("path", r.URL.Path),
		logging.String(logging.FieldErrorCode, string(errors.GetCode(err))),
		logging.Err(err),
	)
	writeError(w, r, err)
}

//Personal.AI order the ending
