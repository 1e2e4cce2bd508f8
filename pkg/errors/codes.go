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
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES ErrorCode = "MOL_001"
)

// SIMPOL Module Error Codes
const (
	ErrCodeEstimationFailed   ErrorCode = "SIMPOL_001"
	ErrCodeUnknownGroup       ErrorCode = "SIMPOL_002"
	ErrCodeInvalidTemperature ErrorCode = "SIMPOL_003"
	ErrCodeInputReadFailed    ErrorCode = "SIMPOL_004"
	ErrCodeReportWriteFailed  ErrorCode = "SIMPOL_005"
	ErrCodeReportUploadFailed ErrorCode = "SIMPOL_006"
)

// Short aliases used at call sites.
const (
	CodeOK                 = ErrorCode("OK")
	CodeUnknown            = ErrorCode("UNKNOWN")
	CodeInternal           = ErrCodeInternal
	CodeInvalidParam       = ErrCodeBadRequest
	CodeNotFound           = ErrCodeNotFound
	CodeValidation         = ErrCodeValidation
	CodeSerialization      = ErrCodeSerialization
	CodeCacheError         = ErrCodeCacheError
	CodeMalformedSMILES    = ErrCodeMoleculeInvalidSMILES
	CodeUnknownGroup       = ErrCodeUnknownGroup
	CodeInvalidTemperature = ErrCodeInvalidTemperature
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	CodeOK:                    http.StatusOK,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusBadRequest,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusNotImplemented,

	ErrCodeMoleculeInvalidSMILES: http.StatusBadRequest,

	ErrCodeEstimationFailed:   http.StatusUnprocessableEntity,
	ErrCodeUnknownGroup:       http.StatusBadRequest,
	ErrCodeInvalidTemperature: http.StatusBadRequest,
	ErrCodeInputReadFailed:    http.StatusBadRequest,
	ErrCodeReportWriteFailed:  http.StatusInternalServerError,
	ErrCodeReportUploadFailed: http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	CodeOK:                    "ok",
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",

	ErrCodeMoleculeInvalidSMILES: "invalid SMILES format",

	ErrCodeEstimationFailed:   "estimation failed",
	ErrCodeUnknownGroup:       "unknown group id",
	ErrCodeInvalidTemperature: "invalid temperature",
	ErrCodeInputReadFailed:    "failed to read compound input",
	ErrCodeReportWriteFailed:  "failed to write report",
	ErrCodeReportUploadFailed: "failed to upload report",
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

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
