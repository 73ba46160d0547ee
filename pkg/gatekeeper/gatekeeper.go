package gatekeeper

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/leasekit/pkg/clientip"
	"github.com/dmitrymomot/leasekit/pkg/logger"
	"github.com/dmitrymomot/leasekit/pkg/ratelimiter"
	"github.com/dmitrymomot/leasekit/pkg/useragent"
)

// UnknownIP is the shared rate limit key for requests without a usable
// client address.
const UnknownIP = "unknown"

// Gatekeeper screens requests before they reach the wrapped handler.
type Gatekeeper struct {
	classifier   *useragent.Classifier
	limiter      *ratelimiter.Limiter
	resolver     *clientip.Resolver
	siteDomain   string
	protected    []string
	cacheControl string
	logger       *slog.Logger
}

// New creates a gatekeeper from a classifier and a limiter.
func New(classifier *useragent.Classifier, limiter *ratelimiter.Limiter, opts ...Option) (*Gatekeeper, error) {
	if classifier == nil {
		return nil, ErrMissingClassifier
	}
	if limiter == nil {
		return nil, ErrMissingLimiter
	}

	g := &Gatekeeper{
		classifier:   classifier,
		limiter:      limiter,
		resolver:     clientip.NewResolver(clientip.DefaultHeaders...),
		protected:    normalizePrefixes(DefaultProtectedPrefixes),
		cacheControl: DefaultCacheControl,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	g.logger = g.logger.With(logger.Component("gatekeeper"))

	return g, nil
}

// Classifier returns the user-agent classifier in use.
func (g *Gatekeeper) Classifier() *useragent.Classifier {
	return g.classifier
}

// Middleware wraps next with the gatekeeper checks.
func (g *Gatekeeper) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ua := r.UserAgent()
		verdict := g.classifier.Classify(ua)

		ip := g.resolver.Resolve(r)
		if ip == "" {
			ip = UnknownIP
		}

		log := g.logger.With(
			logger.IP(ip),
			logger.Path(r.URL.Path),
			logger.Verdict(verdict.Class.String()),
			logger.BotName(verdict.BotName),
		)

		if verdict.Blocked() {
			log.InfoContext(ctx, "blocked user agent", logger.UserAgent(ua), slog.String("match", verdict.Match))
			w.Header().Set(HeaderRobotsTag, RobotsNoIndex)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if !verdict.Allowed() {
			if !g.allow(w, r, ip, log) {
				return
			}

			if g.isProtected(r.URL.Path) && !g.authorize(r) {
				log.InfoContext(ctx, "protected path without same-site referer")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}

		ctx = WithVerdict(ctx, verdict)
		ctx = clientip.WithContext(ctx, ip)

		dw := &decoratingWriter{ResponseWriter: w, cacheControl: g.cacheControl}
		next.ServeHTTP(dw, r.WithContext(ctx))
		dw.finish()
	})
}

// allow counts the request and writes the 429 response when the window is
// exhausted. Store failures let the request through.
func (g *Gatekeeper) allow(w http.ResponseWriter, r *http.Request, ip string, log *slog.Logger) bool {
	res, err := g.limiter.Allow(r.Context(), ip)
	if err != nil {
		log.WarnContext(r.Context(), "rate limiter unavailable, allowing request", logger.Error(err))
		return true
	}
	if res.Allowed {
		return true
	}

	log.InfoContext(r.Context(), "rate limit exceeded", slog.Int("limit", res.Limit))
	setRateLimitHeaders(w.Header(), res, g.limiter.Config().Window)
	http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	return false
}
