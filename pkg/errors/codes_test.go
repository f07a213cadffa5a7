package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatusForCode(ErrCodeReportNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusForCode(ErrCodeAnonymousContact))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatusForCode(ErrCodeTooManyRequests))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("NOPE_999")))
}

func TestTenantForbiddenMapsToNotFound(t *testing.T) {
	// Cross-tenant access must be indistinguishable from a missing report.
	assert.Equal(t, http.StatusNotFound, HTTPStatusForCode(ErrCodeTenantForbidden))
	assert.Equal(t, DefaultMessageForCode(ErrCodeReportNotFound), DefaultMessageForCode(ErrCodeTenantForbidden))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "tracking code not found", DefaultMessageForCode(ErrCodeTrackingCodeNotFound))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE_999")))
}

func TestClientServerClassification(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeValidation))
	assert.False(t, IsServerError(ErrCodeValidation))
	assert.True(t, IsServerError(ErrCodeDatabaseError))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "RPT", ModuleForCode(ErrCodeReportNotFound))
	assert.Equal(t, "TNT", ModuleForCode(ErrCodeTenantNotFound))
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
}

//Personal.AI order the ending
