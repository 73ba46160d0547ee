package httpserver

import (
	"log/slog"
	"time"
)

// Option configures the HTTP server.
type Option func(*config)

// WithAddr sets the listen address. Use "127.0.0.1:0" for an ephemeral port.
func WithAddr(addr string) Option {
	return func(c *config) {
		if addr != "" {
			c.addr = addr
		}
	}
}

// WithTimeouts sets read, write and idle timeouts. Zero values are ignored.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(c *config) {
		if read > 0 {
			c.readTimeout = read
		}
		if write > 0 {
			c.writeTimeout = write
		}
		if idle > 0 {
			c.idleTimeout = idle
		}
	}
}

// WithReadHeaderTimeout bounds how long a client may take to send headers.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.readHeaderTimeout = d
		}
	}
}

// WithShutdownTimeout sets the time allowed for graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// WithLogger sets the logger. Defaults to a noop logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStartHook registers a callback invoked with the bound address once
// the server is listening.
func WithStartHook(h func(addr string, log *slog.Logger)) Option {
	return func(c *config) {
		if h != nil {
			c.startHooks = append(c.startHooks, h)
		}
	}
}

// WithStopHook registers a callback invoked after shutdown.
func WithStopHook(h func(log *slog.Logger)) Option {
	return func(c *config) {
		if h != nil {
			c.stopHooks = append(c.stopHooks, h)
		}
	}
}
