package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinical-records-api/internal/service"
	"clinical-records-api/internal/usecase"
	"clinical-records-api/pkg/jwt"
	"clinical-records-api/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const EntitlementsKey contextKey = "entitlements"

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	revocation service.TokenRevocationService
	log        *logrus.Logger
}

// NewAuthMiddleware builds the bearer token check. revocation may be nil,
// in which case revoked tokens are not looked up.
func NewAuthMiddleware(jwtService *jwt.JWTService, revocation service.TokenRevocationService, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		revocation: revocation,
		log:        log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if m.revocation != nil {
			revoked, err := m.revocation.IsRevoked(r.Context(), claims.TokenID)
			if err != nil {
				response.InternalServerError(w, "Failed to validate token")
				return
			}
			if revoked {
				response.Unauthorized(w, "Token has been revoked")
				return
			}
		}

		annotateTenant(r.Context(), claims.TenantID)

		ctx := usecase.WithRequestContext(r.Context(), usecase.RequestContext{
			TenantID: claims.TenantID,
			UserID:   claims.UserID,
		})
		ctx = context.WithValue(ctx, EntitlementsKey, claims.Entitlements)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetEntitlementsFromContext extracts the granted entitlements from context
func GetEntitlementsFromContext(ctx context.Context) ([]string, bool) {
	entitlements, ok := ctx.Value(EntitlementsKey).([]string)
	return entitlements, ok
}
