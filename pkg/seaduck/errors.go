package seaduck

import "github.com/gear6io/seaduck/pkg/errors"

// Catalog facade error codes
var (
	ErrInvalidIdentifier = errors.MustNewCode("seaduck.invalid_identifier")
	ErrUnsupportedSource = errors.MustNewCode("seaduck.unsupported_source")
	ErrStatementFailed   = errors.MustNewCode("seaduck.statement_failed")
	ErrInvalidConfig     = errors.MustNewCode("seaduck.invalid_config")
	ErrConnectionFailed  = errors.MustNewCode("seaduck.connection_failed")
)
