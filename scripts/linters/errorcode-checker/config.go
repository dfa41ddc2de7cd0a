package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the error code checker configuration
type Config struct {
	ExcludePaths      []string `yaml:"exclude_paths"`
	ForbiddenPatterns []string `yaml:"forbidden_patterns"`
	ExitOnUnused      bool     `yaml:"exit_on_unused"`
	ExitOnForbidden   bool     `yaml:"exit_on_forbidden"`
}

func defaultConfig() *Config {
	return &Config{
		ExcludePaths:      []string{"_examples/", "pkg/errors/", "scripts/", "testdata/", "vendor/", ".git/"},
		ForbiddenPatterns: []string{`fmt\.Errorf\(`, `errors\.Wrapf\(`},
		ExitOnUnused:      false,
		ExitOnForbidden:   true,
	}
}

// loadConfig overlays the YAML file at path on the defaults. An empty path
// returns the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
