package gatekeeper

import (
	"context"

	"github.com/dmitrymomot/leasekit/pkg/useragent"
)

type verdictContextKey struct{}

// WithVerdict stores the classification of the current request in ctx.
func WithVerdict(ctx context.Context, v useragent.Verdict) context.Context {
	return context.WithValue(ctx, verdictContextKey{}, v)
}

// VerdictFromContext returns the classification made by the middleware.
func VerdictFromContext(ctx context.Context) (useragent.Verdict, bool) {
	v, ok := ctx.Value(verdictContextKey{}).(useragent.Verdict)
	return v, ok
}
