package sqlfmt

import "github.com/gear6io/seaduck/pkg/errors"

// SQL formatting error codes
var (
	ErrUnsupportedType = errors.MustNewCode("sqlfmt.unsupported_type")
	ErrInvalidOption   = errors.MustNewCode("sqlfmt.invalid_option")
)
