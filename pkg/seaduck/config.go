package seaduck

import (
	"database/sql"
	"strings"

	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/gear6io/seaduck/pkg/sqlfmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	// CatalogAlias is the name the Iceberg catalog is attached under.
	CatalogAlias = "iceberg"

	// DefaultNamespace is used when no namespace is configured.
	DefaultNamespace = "main"

	memoryCatalog = "memory"
)

// Config describes what New attaches. Presets build it for the supported
// catalog services.
type Config struct {
	// URL is the ATTACH target, usually the warehouse location or an ARN.
	URL string

	DefaultNamespace string

	// AttachOptions are appended after the forced TYPE 'iceberg'. A TYPE
	// supplied here replaces it in place.
	AttachOptions sqlfmt.Options

	// SecretOptions create an unnamed secret before attaching. Empty means
	// no secret is created.
	SecretOptions sqlfmt.Options

	// Extensions are installed after iceberg, in order.
	Extensions []string
}

// Validate checks the config without touching the engine.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DefaultNamespace) == "" {
		return errors.New(ErrInvalidConfig, "default namespace is required", nil)
	}
	if err := c.AttachOptions.Validate(); err != nil {
		return errors.New(ErrInvalidConfig, "invalid attach options", err)
	}
	if err := c.SecretOptions.Validate(); err != nil {
		return errors.New(ErrInvalidConfig, "invalid secret options", err)
	}
	for _, ext := range c.Extensions {
		if strings.TrimSpace(ext) == "" {
			return errors.New(ErrInvalidConfig, "extension name is empty", nil)
		}
	}
	return nil
}

type settings struct {
	config     Config
	logger     zerolog.Logger
	registerer prometheus.Registerer
	db         *sql.DB
}

// Option customizes New.
type Option func(*settings)

// WithDefaultNamespace overrides the namespace selected after attaching.
func WithDefaultNamespace(namespace string) Option {
	return func(s *settings) {
		s.config.DefaultNamespace = namespace
	}
}

// WithSecretOptions replaces the secret options of the config.
func WithSecretOptions(opts sqlfmt.Options) Option {
	return func(s *settings) {
		s.config.SecretOptions = opts
	}
}

// WithExtensions installs additional extensions after the configured ones.
func WithExtensions(extensions ...string) Option {
	return func(s *settings) {
		s.config.Extensions = append(s.config.Extensions, extensions...)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMetrics registers statement metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *settings) {
		s.registerer = reg
	}
}

// WithDB uses db instead of opening an in-memory DuckDB. The caller keeps
// ownership of db; Close only releases the pinned connection.
func WithDB(db *sql.DB) Option {
	return func(s *settings) {
		s.db = db
	}
}

func newSettings(cfg Config, opts []Option) *settings {
	s := &settings{
		config: cfg,
		logger: zerolog.Nop(),
	}
	s.config.Extensions = append([]string(nil), cfg.Extensions...)
	if s.config.DefaultNamespace == "" {
		s.config.DefaultNamespace = DefaultNamespace
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
