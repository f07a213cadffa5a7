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
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
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
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Sentinel aliases used across layers.
const (
	CodeUnknown = ErrorCode("UNKNOWN")
	CodeOK      = ErrorCode("OK")
)

// Report Module Error Codes
const (
	ErrCodeReportNotFound         ErrorCode = "RPT_001"
	ErrCodeDescriptionTooShort    ErrorCode = "RPT_002"
	ErrCodeDescriptionTooLong     ErrorCode = "RPT_003"
	ErrCodeAnonymousContact       ErrorCode = "RPT_004"
	ErrCodeInvalidStatus          ErrorCode = "RPT_005"
	ErrCodeInvalidSeverity        ErrorCode = "RPT_006"
	ErrCodeTrackingCodeNotFound   ErrorCode = "RPT_007"
	ErrCodeTrackingCodeInvalid    ErrorCode = "RPT_008"
	ErrCodeEmptyResponse          ErrorCode = "RPT_009"
	ErrCodeEmptyMessage           ErrorCode = "RPT_010"
	ErrCodeAttachmentTooLarge     ErrorCode = "RPT_011"
	ErrCodeAttachmentUploadFailed ErrorCode = "RPT_012"
)

// Tenant Module Error Codes
const (
	ErrCodeTenantNotFound  ErrorCode = "TNT_001"
	ErrCodeTenantRequired  ErrorCode = "TNT_002"
	ErrCodeNoMemberships   ErrorCode = "TNT_003"
	ErrCodeTenantForbidden ErrorCode = "TNT_004"
)

// Contact Encryption Error Codes
const (
	ErrCodeEncryptionKeyInvalid ErrorCode = "ENC_001"
	ErrCodeEncryptFailed        ErrorCode = "ENC_002"
	ErrCodeDecryptFailed        ErrorCode = "ENC_003"
)

// AI Collaborator Error Codes
const (
	ErrCodeAIUnavailable     ErrorCode = "AI_001"
	ErrCodeAIInferenceFailed ErrorCode = "AI_002"
	ErrCodeAIBatchTooLarge   ErrorCode = "AI_003"
	ErrCodeAIResponseInvalid ErrorCode = "AI_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeReportNotFound:         http.StatusNotFound,
	ErrCodeDescriptionTooShort:    http.StatusUnprocessableEntity,
	ErrCodeDescriptionTooLong:     http.StatusUnprocessableEntity,
	ErrCodeAnonymousContact:       http.StatusUnprocessableEntity,
	ErrCodeInvalidStatus:          http.StatusBadRequest,
	ErrCodeInvalidSeverity:        http.StatusBadRequest,
	ErrCodeTrackingCodeNotFound:   http.StatusNotFound,
	ErrCodeTrackingCodeInvalid:    http.StatusBadRequest,
	ErrCodeEmptyResponse:          http.StatusUnprocessableEntity,
	ErrCodeEmptyMessage:           http.StatusUnprocessableEntity,
	ErrCodeAttachmentTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeAttachmentUploadFailed: http.StatusInternalServerError,

	ErrCodeTenantNotFound:  http.StatusNotFound,
	ErrCodeTenantRequired:  http.StatusUnprocessableEntity,
	ErrCodeNoMemberships:   http.StatusForbidden,
	ErrCodeTenantForbidden: http.StatusNotFound, // deliberate: do not reveal existence

	ErrCodeEncryptionKeyInvalid: http.StatusInternalServerError,
	ErrCodeEncryptFailed:        http.StatusInternalServerError,
	ErrCodeDecryptFailed:        http.StatusInternalServerError,

	ErrCodeAIUnavailable:     http.StatusServiceUnavailable,
	ErrCodeAIInferenceFailed: http.StatusInternalServerError,
	ErrCodeAIBatchTooLarge:   http.StatusBadRequest,
	ErrCodeAIResponseInvalid: http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
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

	ErrCodeReportNotFound:         "report not found",
	ErrCodeDescriptionTooShort:    "description must contain at least 10 characters",
	ErrCodeDescriptionTooLong:     "description must not exceed 5000 characters",
	ErrCodeAnonymousContact:       "contact information cannot be provided for anonymous reports",
	ErrCodeInvalidStatus:          "invalid report status",
	ErrCodeInvalidSeverity:        "invalid severity level",
	ErrCodeTrackingCodeNotFound:   "tracking code not found",
	ErrCodeTrackingCodeInvalid:    "invalid tracking code",
	ErrCodeEmptyResponse:          "response must not be empty",
	ErrCodeEmptyMessage:           "message body must not be empty",
	ErrCodeAttachmentTooLarge:     "attachment exceeds size limit",
	ErrCodeAttachmentUploadFailed: "failed to store attachment",

	ErrCodeTenantNotFound:  "tenant not found",
	ErrCodeTenantRequired:  "report must belong to a tenant",
	ErrCodeNoMemberships:   "no tenants assigned to this account",
	ErrCodeTenantForbidden: "report not found",

	ErrCodeEncryptionKeyInvalid: "contact encryption key invalid",
	ErrCodeEncryptFailed:        "failed to encrypt contact information",
	ErrCodeDecryptFailed:        "failed to decrypt contact information",

	ErrCodeAIUnavailable:     "severity estimation service unavailable",
	ErrCodeAIInferenceFailed: "severity estimation failed",
	ErrCodeAIBatchTooLarge:   "severity estimation batch too large",
	ErrCodeAIResponseInvalid: "severity estimation response malformed",
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
