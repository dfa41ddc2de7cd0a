// Package sqlfmt renders Go values, identifiers and option lists as DuckDB
// SQL text. DuckDB's C API exposes no quoting helpers, so the rules here
// follow the SQL standard: single quotes for literals, double quotes for
// identifiers, embedded quotes doubled. Backslash escapes are never used.
package sqlfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gear6io/seaduck/pkg/errors"
)

// TimestampLayout renders timestamps at microsecond precision with a
// trailing zone (Z for UTC).
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Quote returns v as a SQL literal.
func Quote(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return quoteFloat(float64(val), 32)
	case float64:
		return quoteFloat(val, 64)
	case time.Time:
		return QuoteString(val.Format(TimestampLayout)), nil
	case *time.Time:
		if val == nil {
			return "NULL", nil
		}
		return QuoteString(val.Format(TimestampLayout)), nil
	case string:
		return QuoteString(val), nil
	default:
		return "", errors.New(ErrUnsupportedType, "value cannot be safely quoted", nil).
			AddContext("type", fmt.Sprintf("%T", v))
	}
}

// MustQuote is Quote for values known to be quotable; it panics otherwise.
func MustQuote(v any) string {
	s, err := Quote(v)
	if err != nil {
		panic(err)
	}
	return s
}

func quoteFloat(f float64, bitSize int) (string, error) {
	// NaN and infinities have no unquoted literal form
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", errors.New(ErrUnsupportedType, "value cannot be safely quoted", nil).
			AddContext("value", strconv.FormatFloat(f, 'g', -1, bitSize))
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize), nil
}

// QuoteString wraps s in single quotes, doubling embedded single quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteIdentifier wraps name in double quotes, doubling embedded double quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteQualified quotes each part and joins them with dots,
// e.g. "iceberg"."main"."events".
func QuoteQualified(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = QuoteIdentifier(p)
	}
	return strings.Join(quoted, ".")
}
