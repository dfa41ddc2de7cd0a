package errors

import (
	"fmt"
	"sort"
	"strings"
)

// GetContext returns the context of the outermost *Error in err's chain.
func GetContext(err error) map[string]string {
	if coded, ok := As(err); ok {
		return coded.Context
	}
	return nil
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) string {
	if coded, ok := As(err); ok {
		return coded.Code.String()
	}
	return ""
}

// FormatError renders err over several lines for verbose CLI output.
func FormatError(err error) string {
	coded, ok := As(err)
	if !ok {
		return err.Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Code: %s", coded.Code))
	if coded.Message != "" {
		parts = append(parts, fmt.Sprintf("Message: %s", coded.Message))
	}

	if len(coded.Context) > 0 {
		keys := make([]string, 0, len(coded.Context))
		for k := range coded.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts = append(parts, "Context:")
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("  %s: %s", k, coded.Context[k]))
		}
	}

	if coded.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %v", coded.Cause))
	}

	return strings.Join(parts, "\n")
}
