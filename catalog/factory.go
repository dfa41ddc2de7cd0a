// Package catalog builds a seaduck.Catalog from the CLI configuration.
package catalog

import (
	"context"

	"github.com/gear6io/seaduck/config"
	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/gear6io/seaduck/pkg/seaduck"
)

// Options converts the configuration to facade options. A configured secret
// replaces the preset one for every catalog type. Extra options are applied
// last.
func Options(cfg *config.Config, extra ...seaduck.Option) []seaduck.Option {
	var opts []seaduck.Option
	if cfg.Catalog.DefaultNamespace != "" {
		opts = append(opts, seaduck.WithDefaultNamespace(cfg.Catalog.DefaultNamespace))
	}
	if len(cfg.Catalog.Secret) > 0 {
		opts = append(opts, seaduck.WithSecretOptions(cfg.Catalog.Secret))
	}
	if len(cfg.Catalog.Extensions) > 0 {
		opts = append(opts, seaduck.WithExtensions(cfg.Catalog.Extensions...))
	}
	return append(opts, extra...)
}

// NewCatalog attaches the catalog described by cfg.
func NewCatalog(ctx context.Context, cfg *config.Config, extra ...seaduck.Option) (*seaduck.Catalog, error) {
	opts := Options(cfg, extra...)

	switch cfg.Catalog.Type {
	case config.CatalogREST:
		return seaduck.NewRestCatalog(ctx, cfg.Catalog.URI, cfg.Catalog.Warehouse, opts...)
	case config.CatalogGlue:
		return seaduck.NewGlueCatalog(ctx, cfg.Catalog.Warehouse, opts...)
	case config.CatalogS3Tables:
		return seaduck.NewS3TablesCatalog(ctx, cfg.Catalog.ARN, opts...)
	default:
		return nil, errors.New(ErrUnsupportedCatalogType, "unsupported catalog type", nil).AddContext("catalog_type", cfg.Catalog.Type)
	}
}
