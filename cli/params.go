package cli

import (
	"strings"

	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/spf13/cast"
)

// parseParam converts a --param value. Values may carry a type prefix:
// int:, float:, bool:, ts: or str:. The literal "null" binds NULL and
// anything else binds as a string.
func parseParam(raw string) (any, error) {
	if raw == "null" {
		return nil, nil
	}

	kind, value, ok := strings.Cut(raw, ":")
	if !ok {
		return raw, nil
	}

	var (
		v   any
		err error
	)
	switch kind {
	case "int":
		v, err = cast.ToInt64E(value)
	case "float":
		v, err = cast.ToFloat64E(value)
	case "bool":
		v, err = cast.ToBoolE(value)
	case "ts":
		v, err = cast.ToTimeE(value)
	case "str":
		v = value
	default:
		return raw, nil
	}
	if err != nil {
		return nil, errors.New(ErrInvalidParam, "invalid "+kind+" parameter", err).AddContext("param", raw)
	}
	return v, nil
}

func parseParams(raw []string) ([]any, error) {
	params := make([]any, 0, len(raw))
	for _, r := range raw {
		p, err := parseParam(r)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

// splitAssignment splits "alias=url" at the first '='.
func splitAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" || value == "" {
		return "", "", errors.New(ErrInvalidAttach, "expected alias=url", nil)
	}
	return key, value, nil
}
