// Package logger builds *slog.Logger instances for leasekit services.
//
// New assembles a handler from functional options (format, level, output,
// static attributes) and wraps it in a decorator that pulls request-scoped
// values, such as the request id, out of the context on every record.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "leasegate"),
//	    logger.WithContextExtractors(logger.RequestIDExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "request blocked",
//	    logger.IP(ip),
//	    logger.Verdict("block"),
//	)
//
// The attribute helpers in attr.go keep key names consistent between the
// gatekeeper, the session manager and the CLI. Helpers that take an error or
// an optional value return an empty slog.Attr when there is nothing to log,
// so call sites do not need nil checks.
package logger
