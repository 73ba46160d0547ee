// Package httpserver runs an http.Server with graceful shutdown on context
// cancellation or SIGINT/SIGTERM, plus a small liveness/readiness handler.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
package httpserver
