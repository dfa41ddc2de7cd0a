package cli

import "github.com/gear6io/seaduck/pkg/errors"

// CLI-specific error codes
var (
	ErrConfigExists  = errors.MustNewCode("cli.config_exists")
	ErrInvalidParam  = errors.MustNewCode("cli.invalid_param")
	ErrInvalidAttach = errors.MustNewCode("cli.invalid_attach")
)
