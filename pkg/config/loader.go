package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var dotenvOnce sync.Once

// Option adjusts how Load parses the environment.
type Option func(*env.Options)

// WithPrefix only considers variables starting with prefix; the prefix is
// prepended to every tag name.
func WithPrefix(prefix string) Option {
	return func(o *env.Options) { o.Prefix = prefix }
}

// WithEnvironment parses from the given map instead of the process environment.
func WithEnvironment(vars map[string]string) Option {
	return func(o *env.Options) { o.Environment = vars }
}

// Load populates v from environment variables.
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// A missing .env file is the normal case outside local development.
		_ = godotenv.Load()
	})

	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}

	if err := env.ParseWithOptions(v, o); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Use it for configuration
// the process cannot start without.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// LoadEnvFiles reads the given dotenv files into the process environment.
// Variables that are already set are left untouched.
func LoadEnvFiles(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrReadingFile, err)
	}
	return nil
}

// LoadYAML decodes the YAML file at path into v. Fields absent from the
// file keep the values v already holds, so callers can pre-fill defaults.
func LoadYAML[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadingFile, err)
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Join(ErrDecodingFile, err)
	}
	return nil
}
