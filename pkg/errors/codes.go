package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// The prefix before the underscore names the module that owns the code.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Sentinel codes for GetCode.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeInputTooLarge      ErrorCode = "COMMON_017"
	ErrCodeRateLimited        ErrorCode = "COMMON_018"
)

// Language model backend Error Codes
const (
	ErrCodeBackendUnavailable ErrorCode = "LLM_001"
	ErrCodeBackendStatus      ErrorCode = "LLM_002"
	ErrCodeBackendTimeout     ErrorCode = "LLM_003"
	ErrCodeBackendMalformed   ErrorCode = "LLM_004"
	ErrCodeScoreNotFound      ErrorCode = "LLM_005"
	ErrCodeEmptyResponse      ErrorCode = "LLM_006"
)

// Comparison engine Error Codes
const (
	ErrCodeInvalidWeights ErrorCode = "ENG_001"
	ErrCodeInvalidPolicy  ErrorCode = "ENG_002"
	ErrCodeInvalidInput   ErrorCode = "ENG_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeInputTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:        http.StatusTooManyRequests,

	ErrCodeBackendUnavailable: http.StatusServiceUnavailable,
	ErrCodeBackendStatus:      http.StatusBadGateway,
	ErrCodeBackendTimeout:     http.StatusGatewayTimeout,
	ErrCodeBackendMalformed:   http.StatusBadGateway,
	ErrCodeScoreNotFound:      http.StatusBadGateway,
	ErrCodeEmptyResponse:      http.StatusBadGateway,

	ErrCodeInvalidWeights: http.StatusInternalServerError,
	ErrCodeInvalidPolicy:  http.StatusInternalServerError,
	ErrCodeInvalidInput:   http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeInputTooLarge:      "input too large",
	ErrCodeRateLimited:        "rate limit exceeded",

	ErrCodeBackendUnavailable: "language model backend unreachable",
	ErrCodeBackendStatus:      "language model backend returned an error status",
	ErrCodeBackendTimeout:     "language model backend timed out",
	ErrCodeBackendMalformed:   "language model backend returned a malformed payload",
	ErrCodeScoreNotFound:      "no numeric score in model response",
	ErrCodeEmptyResponse:      "model response was empty",

	ErrCodeInvalidWeights: "blend weights must sum to one",
	ErrCodeInvalidPolicy:  "unknown scoring policy",
	ErrCodeInvalidInput:   "invalid comparison input",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
