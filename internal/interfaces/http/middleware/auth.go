package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// principalContextKey is the context key for the authenticated principal.
	principalContextKey contextKey = iota
)

// Principal is the authenticated caller extracted from a verified token.
// Tenants carries the raw claim value; scope resolution against the
// membership table happens in the handlers, which treat the claim as a hint
// at most.
type Principal struct {
	UserID  common.UserID
	Email   string
	Tenants []common.TenantID
}

// AuthMiddleware verifies JWT bearer tokens on the case-manager API surface.
// The public intake and tracking endpoints never pass through it.
type AuthMiddleware struct {
	secret       []byte
	issuer       string
	audience     string
	clockSkew    time.Duration
	tenantsClaim string
	logger       logging.Logger
}

// NewAuthMiddleware creates an AuthMiddleware from the auth configuration.
func NewAuthMiddleware(cfg config.AuthConfig, logger logging.Logger) *AuthMiddleware {
	claim := cfg.TenantsClaim
	if claim == "" {
		claim = "tenants"
	}
	return &AuthMiddleware{
		secret:       []byte(cfg.JWTSecret),
		issuer:       cfg.Issuer,
		audience:     cfg.Audience,
		clockSkew:    cfg.ClockSkew,
		tenantsClaim: claim,
		logger:       logger,
	}
}

// Handler enforces authentication. Requests without a verifiable bearer
// token receive 401 with no detail about what failed.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeUnauthorized(w, "authentication required")
			return
		}

		principal, err := m.verify(token)
		if err != nil {
			m.logger.Warn("token verification failed",
				logging.String("path", r.URL.Path),
				logging.Err(err))
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verify parses and validates the token and maps its claims to a Principal.
func (m *AuthMiddleware) verify(tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(m.clockSkew),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}

	p := &Principal{UserID: common.UserID(sub)}
	if email, ok := claims["email"].(string); ok {
		p.Email = email
	}
	p.Tenants = tenantsFromClaim(claims[m.tenantsClaim])
	return p, nil
}

// tenantsFromClaim tolerates both a JSON array and a comma-separated string,
// since identity providers differ in how they emit multi-valued claims.
func tenantsFromClaim(raw interface{}) []common.TenantID {
	switch v := raw.(type) {
	case []interface{}:
		out := make([]common.TenantID, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, common.TenantID(s))
			}
		}
		return out
	case string:
		var out []common.TenantID
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, common.TenantID(s))
			}
		}
		return out
	default:
		return nil
	}
}

// extractBearerToken extracts the Bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// writeUnauthorized writes a minimal 401 JSON body.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "COMMON_003",
		"message": message,
	})
}

// ContextGetPrincipal retrieves the authenticated principal from the request
// context. Returns nil on unauthenticated (public) requests.
func ContextGetPrincipal(ctx context.Context) *Principal {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	if !ok {
		return nil
	}
	return p
}

// ContextGetUserID extracts the principal's user id, or "" when anonymous.
func ContextGetUserID(ctx context.Context) common.UserID {
	if p := ContextGetPrincipal(ctx); p != nil {
		return p.UserID
	}
	return ""
}

// ContextWithPrincipal injects a principal; tests use this to bypass token
// minting.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

//Personal.AI order the ending
