package catalog

import "github.com/gear6io/seaduck/pkg/errors"

// Catalog-specific error codes
var (
	ErrUnsupportedCatalogType = errors.MustNewCode("catalog.unsupported_type")
)
