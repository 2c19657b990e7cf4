package httpapi

import (
	"context"
	"fmt"

	"github.com/riskibarqy/pick-league/internal/domain/user"
	"github.com/riskibarqy/pick-league/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok && p.Authenticated()
}

// requirePrincipal returns the caller set by RequireAuth and tags the active
// span with it.
func requirePrincipal(ctx context.Context) (user.Principal, error) {
	p, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("enduser.id", p.UserID))
	return p, nil
}
