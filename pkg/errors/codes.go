package errors

import (
	"net/http"
	"strings"
)

// ErrorCode identifies an error condition. Codes carry a module prefix:
// COMMON, CLM (claim records) or NAR (narrative selection).
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

const (
	// ErrCodeInvalidRecord marks a claim record that breaks one of the record
	// invariants (claimant response without a response, offline and paper both
	// set, deadlines before issue). It is a data contract defect, never retried.
	ErrCodeInvalidRecord ErrorCode = "CLM_001"
	ErrCodeClaimNotFound ErrorCode = "CLM_002"
)

const (
	// ErrCodeUnmappedNarrative marks a gap in the narrative table.
	ErrCodeUnmappedNarrative ErrorCode = "NAR_001"
)

// Short names used by the constructors in errors.go.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

type codeInfo struct {
	status  int
	message string
}

var codes = map[ErrorCode]codeInfo{
	ErrCodeInternal:           {http.StatusInternalServerError, "internal server error"},
	ErrCodeBadRequest:         {http.StatusBadRequest, "bad request"},
	ErrCodeNotFound:           {http.StatusNotFound, "resource not found"},
	ErrCodeConflict:           {http.StatusConflict, "resource conflict"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "service unavailable"},
	ErrCodeValidation:         {http.StatusBadRequest, "validation failed"},
	ErrCodeSerialization:      {http.StatusInternalServerError, "serialization failed"},
	ErrCodeDatabaseError:      {http.StatusInternalServerError, "database error"},
	ErrCodeCacheError:         {http.StatusInternalServerError, "cache error"},
	ErrCodeExternalService:    {http.StatusBadGateway, "external service error"},

	ErrCodeInvalidRecord: {http.StatusUnprocessableEntity, "claim record violates a record invariant"},
	ErrCodeClaimNotFound: {http.StatusNotFound, "claim not found"},

	ErrCodeUnmappedNarrative: {http.StatusInternalServerError, "no narrative mapped for state and viewer"},
}

// HTTPStatusForCode returns the response status for code, 500 when unknown.
func HTTPStatusForCode(code ErrorCode) int {
	if info, ok := codes[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the generic message for code.
func DefaultMessageForCode(code ErrorCode) string {
	if info, ok := codes[code]; ok {
		return info.message
	}
	return "unknown error"
}

func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

func IsServerError(code ErrorCode) bool {
	return HTTPStatusForCode(code) >= 500
}

// ModuleForCode returns the prefix before the first underscore.
func ModuleForCode(code ErrorCode) string {
	if module, _, _ := strings.Cut(string(code), "_"); module != "" {
		return module
	}
	return "UNKNOWN"
}
