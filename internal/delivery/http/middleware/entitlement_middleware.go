package middleware

import (
	"net/http"

	"clinical-records-api/internal/domain/entity"
	"clinical-records-api/pkg/response"
)

// RequireEntitlement checks that the caller was granted entitlement on the
// entity. Entitlements are read from context (set by AuthMiddleware from
// JWT claims). A missing grant is reported as 401.
func RequireEntitlement(entityName string, entitlement entity.Entitlement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			granted, ok := GetEntitlementsFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Entitlement information not found")
				return
			}

			if !entity.Allows(granted, entityName, entitlement) {
				response.Unauthorized(w, "Missing entitlement "+entity.Grant(entityName, entitlement))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
