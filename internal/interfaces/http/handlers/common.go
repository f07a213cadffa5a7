// Package handlers contains the HTTP handlers for the public intake surface
// and the authenticated case-manager API.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/safeharbor-io/safeharbor/internal/domain/tenant"
	"github.com/safeharbor-io/safeharbor/internal/interfaces/http/middleware"
	pkgerrors "github.com/safeharbor-io/safeharbor/pkg/errors"
)

// maxRequestBody caps JSON request bodies. The description field tops out at
// 5000 characters, so anything near this limit is not a legitimate request.
const maxRequestBody = 64 << 10

// ErrorResponse is the JSON error body shape.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a plain error response.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, ErrorResponse{Code: code, Message: message})
}

// writeAppError maps a domain error to its HTTP status via the error-code
// table. Internal errors are masked; the structured log already carries the
// detail.
func writeAppError(w http.ResponseWriter, err error) {
	code := pkgerrors.GetCode(err)
	status, ok := pkgerrors.ErrorCodeHTTPStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	var appErr *pkgerrors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}
	writeError(w, status, code.String(), message)
}

// decodeJSON decodes a request body into dest with a size cap and strict
// field checking.
func decodeJSON(r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return pkgerrors.New(pkgerrors.ErrCodeBadRequest, "malformed request body")
	}
	return nil
}

// parseLimitOffset reads limit/offset query parameters with defaults and an
// upper bound on page size.
func parseLimitOffset(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// resolveScope loads the caller's access scope from the membership relation.
// The JWT tenants claim is never trusted directly; storage is authoritative.
func resolveScope(r *http.Request, resolver *tenant.Resolver) (tenant.Scope, error) {
	userID := middleware.ContextGetUserID(r.Context())
	return resolver.Resolve(r.Context(), userID)
}

//Personal.AI order the ending
