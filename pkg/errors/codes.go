package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// Planet Module Error Codes
const (
	ErrCodePlanetNotFound      ErrorCode = "PLANET_001"
	ErrCodePlanetNameInvalid   ErrorCode = "PLANET_002"
	ErrCodeInvalidMetric       ErrorCode = "PLANET_003"
	ErrCodePlanetRecordInvalid ErrorCode = "PLANET_004"
)

// Catalog Module Error Codes
const (
	ErrCodeArchiveUnavailable ErrorCode = "CATALOG_001"
	ErrCodeArchiveParseError  ErrorCode = "CATALOG_002"
	ErrCodeSeedInvalid        ErrorCode = "CATALOG_003"
	ErrCodeExportFailed       ErrorCode = "CATALOG_004"
	ErrCodeExportNotFound     ErrorCode = "CATALOG_005"
	ErrCodeSearchFailed       ErrorCode = "CATALOG_006"
	ErrCodeEventPublishFailed ErrorCode = "CATALOG_007"
)

// Chart Module Error Codes
const (
	ErrCodeChartInputInvalid ErrorCode = "CHART_001"
	ErrCodeSeriesMismatch    ErrorCode = "CHART_002"
)

// Infrastructure aliases.
const (
	CodeDatabaseError     = ErrCodeDatabaseError
	CodeDBQueryError      = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeSearchError       = ErrCodeSearchFailed
	CodeMessageQueueError = ErrCodeEventPublishFailed
	CodeStorageError      = ErrCodeExportFailed
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodePlanetNotFound:      http.StatusNotFound,
	ErrCodePlanetNameInvalid:   http.StatusBadRequest,
	ErrCodeInvalidMetric:       http.StatusBadRequest,
	ErrCodePlanetRecordInvalid: http.StatusUnprocessableEntity,

	ErrCodeArchiveUnavailable: http.StatusServiceUnavailable,
	ErrCodeArchiveParseError:  http.StatusBadGateway,
	ErrCodeSeedInvalid:        http.StatusBadRequest,
	ErrCodeExportFailed:       http.StatusInternalServerError,
	ErrCodeExportNotFound:     http.StatusNotFound,
	ErrCodeSearchFailed:       http.StatusInternalServerError,
	ErrCodeEventPublishFailed: http.StatusInternalServerError,

	ErrCodeChartInputInvalid: http.StatusBadRequest,
	ErrCodeSeriesMismatch:    http.StatusUnprocessableEntity,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodePlanetNotFound:      "planet not found",
	ErrCodePlanetNameInvalid:   "invalid planet name",
	ErrCodeInvalidMetric:       "unknown metric",
	ErrCodePlanetRecordInvalid: "invalid planet record",

	ErrCodeArchiveUnavailable: "exoplanet archive unavailable",
	ErrCodeArchiveParseError:  "failed to parse exoplanet archive response",
	ErrCodeSeedInvalid:        "invalid seed catalog",
	ErrCodeExportFailed:       "catalog export failed",
	ErrCodeExportNotFound:     "export not found",
	ErrCodeSearchFailed:       "planet search failed",
	ErrCodeEventPublishFailed: "failed to publish catalog event",

	ErrCodeChartInputInvalid: "invalid chart input",
	ErrCodeSeriesMismatch:    "series length does not match categories",
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
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
