// Package config loads typed configuration for leasekit services.
//
// Load fills a struct from environment variables using `env` and
// `envDefault` tags (github.com/caarlos0/env). The first call also reads a
// `.env` file from the working directory when one exists, so local
// development does not need exported variables:
//
//	type Config struct {
//	    SiteDomain string        `env:"GATEKEEPER_SITE_DOMAIN,required"`
//	    Window     time.Duration `env:"GATEKEEPER_RATE_WINDOW" envDefault:"15m"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Structured files, such as classifier rule sets, are read with LoadYAML.
package config
