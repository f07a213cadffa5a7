package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS_PreflightAnswered(t *testing.T) {
	m := NewCORSMiddleware(DefaultCORSConfig())
	h := m.Handler(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/reports", nil)
	req.Header.Set("Origin", "https://intake.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_SimpleRequestGetsHeaders(t *testing.T) {
	m := NewCORSMiddleware(CORSConfig{
		AllowedOrigins: []string{"https://intake.example.com"},
		AllowedMethods: []string{http.MethodGet},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	h := m.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/track/WB-ABC123DE", nil)
	req.Header.Set("Origin", "https://intake.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://intake.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Request-ID", rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
}

func TestCORS_DisallowedOriginGetsNoHeaders(t *testing.T) {
	m := NewCORSMiddleware(CORSConfig{
		AllowedOrigins: []string{"https://intake.example.com"},
		AllowedMethods: []string{http.MethodGet},
	})
	h := m.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginPassesThrough(t *testing.T) {
	m := NewCORSMiddleware(DefaultCORSConfig())
	h := m.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_CredentialsNeverWithWildcard(t *testing.T) {
	m := NewCORSMiddleware(CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet},
		AllowCredentials: true,
	})
	h := m.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

//Personal.AI order the ending
