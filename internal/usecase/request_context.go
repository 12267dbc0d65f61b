package usecase

import (
	"context"

	"github.com/google/uuid"
)

// RequestContext is the caller identity every entity operation runs under.
type RequestContext struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

type requestContextKey struct{}

func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom returns the identity stored by the auth middleware.
func RequestContextFrom(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(RequestContext)
	return rc, ok
}
