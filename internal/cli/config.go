package cli

import (
	"github.com/dmitrymomot/leasekit/pkg/gatekeeper"
	"github.com/dmitrymomot/leasekit/pkg/httpserver"
	"github.com/dmitrymomot/leasekit/pkg/redis"
	"github.com/dmitrymomot/leasekit/pkg/session"
)

// Rate limit store backends.
const (
	storeMemory = "memory"
	storeRedis  = "redis"
)

type appConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`

	// Upstream is the application the gatekeeper forwards to.
	Upstream string `env:"LEASEGATE_UPSTREAM" envDefault:"http://localhost:3000"`

	// RateStore selects where rate limit counters live: memory or redis.
	RateStore         string `env:"LEASEGATE_RATE_STORE" envDefault:"memory"`
	RateStoreCapacity uint64 `env:"LEASEGATE_RATE_STORE_CAPACITY" envDefault:"100000"`

	HTTP       httpserver.Config
	Gatekeeper gatekeeper.Config
	Redis      redis.Config
	Session    session.Config
}
