package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/gear6io/seaduck/pkg/sqlfmt"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the configuration file looked up by FindConfig.
	FileName = ".seaduck.yml"

	// SecretEnvVar may hold the secret options as a JSON object. It takes
	// precedence over catalog.secret in the file.
	SecretEnvVar = "SEADUCK_SECRET_JSON"
)

// Catalog types
const (
	CatalogREST     = "rest"
	CatalogGlue     = "glue"
	CatalogS3Tables = "s3tables"
)

// Config is the contents of .seaduck.yml
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Log     LogConfig     `yaml:"log"`
}

// CatalogConfig selects and parameterizes the attached catalog
type CatalogConfig struct {
	Type             string `yaml:"type"`
	URI              string `yaml:"uri,omitempty"`       // rest
	Warehouse        string `yaml:"warehouse,omitempty"` // rest, glue
	ARN              string `yaml:"arn,omitempty"`       // s3tables
	DefaultNamespace string `yaml:"default_namespace,omitempty"`

	// Secret, when set, replaces the preset secret of every catalog type,
	// including the credential_chain secret of glue and s3tables.
	Secret sqlfmt.Options `yaml:"secret,omitempty"`

	Extensions []string `yaml:"extensions,omitempty"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	Console    bool   `yaml:"console"`     // human readable output on stderr
	FilePath   string `yaml:"file_path"`   // JSON lines, empty disables
	MaxSize    int    `yaml:"max_size"`    // MB before rotation
	MaxBackups int    `yaml:"max_backups"` // rotated files kept
	MaxAge     int    `yaml:"max_age"`     // days rotated files are kept
}

// LoadDefaultConfig returns the configuration written by "seaduck init":
// a local REST catalog with console logging at warn level.
func LoadDefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Type:             CatalogREST,
			URI:              "http://localhost:8181",
			DefaultNamespace: "main",
		},
		Log: LogConfig{
			Level:      "warn",
			Console:    true,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// LoadConfig reads filename, applies SEADUCK_SECRET_JSON and validates.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err).AddContext("path", filename)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err).AddContext("path", filename)
	}
	cfg.applyDefaults()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.New(ErrConfigValidationFailed, "configuration validation failed", err).AddContext("path", filename)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Catalog.DefaultNamespace == "" {
		c.Catalog.DefaultNamespace = "main"
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
}

// ApplyEnv overrides the secret options from SEADUCK_SECRET_JSON when set.
func (c *Config) ApplyEnv() error {
	raw, ok := os.LookupEnv(SecretEnvVar)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	opts, err := sqlfmt.ParseJSON(raw)
	if err != nil {
		return errors.New(ErrSecretOptionsInvalid, "invalid secret options in environment", err).AddContext("env", SecretEnvVar)
	}
	c.Catalog.Secret = opts
	return nil
}

// SaveConfig writes cfg to filename. The file may contain credentials, so
// it is created readable by the owner only.
func SaveConfig(cfg *Config, filename string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.New(ErrConfigFileMarshalFailed, "failed to marshal config", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err).AddContext("path", filename)
	}

	return nil
}

// FindConfig walks up from dir looking for FileName.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.New(ErrConfigNotFound, "failed to resolve directory", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(ErrConfigNotFound, "no "+FileName+" found; run 'seaduck init'", nil)
		}
		dir = parent
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			return errors.New(ErrLogLevelInvalid, "invalid log level", err).AddContext("level", c.Log.Level)
		}
	}
	return nil
}

// Validate checks that the fields required by the catalog type are set.
func (c *CatalogConfig) Validate() error {
	var required string
	var value string

	switch c.Type {
	case "":
		return errors.New(ErrCatalogTypeRequired, "catalog type is required", nil)
	case CatalogREST:
		required, value = "uri", c.URI
	case CatalogGlue:
		required, value = "warehouse", c.Warehouse
	case CatalogS3Tables:
		required, value = "arn", c.ARN
	default:
		return errors.New(ErrCatalogTypeUnknown, "unknown catalog type", nil).AddContext("catalog_type", c.Type)
	}

	if strings.TrimSpace(value) == "" {
		return errors.New(ErrCatalogFieldRequired, "catalog."+required+" is required", nil).AddContext("catalog_type", c.Type)
	}

	if err := c.Secret.Validate(); err != nil {
		return errors.New(ErrSecretOptionsInvalid, "invalid secret options", err)
	}
	return nil
}
