package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/leasekit/pkg/config"
	"github.com/dmitrymomot/leasekit/pkg/gatekeeper"
	"github.com/dmitrymomot/leasekit/pkg/httpserver"
	"github.com/dmitrymomot/leasekit/pkg/logger"
	"github.com/dmitrymomot/leasekit/pkg/ratelimiter"
	"github.com/dmitrymomot/leasekit/pkg/redis"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var upstream string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gatekeeper in front of an upstream application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg appConfig
			if err := config.Load(&cfg); err != nil {
				return err
			}
			if upstream != "" {
				cfg.Upstream = upstream
			}

			log := flags.logger(cfg.Env)
			return serve(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().StringVar(&upstream, "upstream", "", "upstream URL (overrides LEASEGATE_UPSTREAM)")

	return cmd
}

func serve(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	target, err := url.Parse(cfg.Upstream)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return fmt.Errorf("invalid upstream %q: %w", cfg.Upstream, errors.Join(gatekeeper.ErrInvalidConfig, err))
	}

	store, checks, cleanup, err := rateStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	gk, err := gatekeeper.NewFromConfig(cfg.Gatekeeper, store, gatekeeper.WithLogger(log))
	if err != nil {
		return err
	}

	router := newRouter(gk, newProxy(target, log), log, checks...)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	log.InfoContext(ctx, "forwarding",
		slog.String("upstream", target.String()),
		slog.String("rate_store", cfg.RateStore),
	)
	return srv.Run(ctx, router)
}

func rateStore(ctx context.Context, cfg appConfig) (ratelimiter.Store, []httpserver.Check, func(), error) {
	switch cfg.RateStore {
	case "", storeMemory:
		store := ratelimiter.NewMemoryStore(ratelimiter.WithCapacity(cfg.RateStoreCapacity))
		return store, nil, store.Close, nil
	case storeRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		store := ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix("leasegate:ratelimit"))
		checks := []httpserver.Check{redis.Healthcheck(client)}
		return store, checks, func() { _ = client.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown rate store %q: want %q or %q", cfg.RateStore, storeMemory, storeRedis)
	}
}

// newRouter mounts probes outside the gatekeeper and everything else behind it.
func newRouter(gk *gatekeeper.Gatekeeper, upstream http.Handler, log *slog.Logger, checks ...httpserver.Check) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, checks...))

	r.Group(func(r chi.Router) {
		r.Use(gk.Middleware)
		r.Handle("/*", upstream)
	})

	return r
}

func newProxy(target *url.URL, log *slog.Logger) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.ErrorContext(r.Context(), "upstream request failed", logger.Path(r.URL.Path), logger.Error(err))
			http.Error(w, "Bad Gateway", http.StatusBadGateway)
		},
	}
}
