package clientip

import (
	"context"
	"net/http"
)

type contextKey struct{}

// WithContext stores the client address in ctx.
func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext returns the address stored by WithContext or Middleware.
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// Middleware resolves the client address once per request with the default
// resolver and stores it in the request context.
func Middleware(next http.Handler) http.Handler {
	return defaultResolver.Middleware(next)
}

// Middleware resolves the client address with res and stores it in the
// request context.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithContext(r.Context(), res.Resolve(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
