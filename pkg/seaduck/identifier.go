package seaduck

import (
	"strconv"
	"strings"

	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/seaduck/pkg/errors"
)

// TableRef names a table either by bare name, resolved against the
// catalog's default namespace, or by an explicit namespace/name identifier.
type TableRef struct {
	name      string
	ident     table.Identifier
	qualified bool
}

// Table refers to name in the default namespace.
func Table(name string) TableRef {
	return TableRef{name: name}
}

// QualifiedTable refers to name in namespace.
func QualifiedTable(namespace, name string) TableRef {
	return FromIdentifier(table.Identifier{namespace, name})
}

// FromIdentifier wraps an explicit identifier. Only two-part identifiers
// resolve; anything else fails when used.
func FromIdentifier(ident table.Identifier) TableRef {
	return TableRef{ident: append(table.Identifier(nil), ident...), qualified: true}
}

// ParseTableRef splits "ns.table" at the first dot into a qualified
// reference and treats text without a dot as a bare name. Dots after the
// first belong to the table name.
func ParseTableRef(s string) TableRef {
	namespace, name, ok := strings.Cut(s, ".")
	if !ok {
		return Table(s)
	}
	return QualifiedTable(namespace, name)
}

// Qualified reports whether the reference carries its own namespace.
func (r TableRef) Qualified() bool {
	return r.qualified
}

func (r TableRef) resolve(defaultNamespace string) (namespace, name string, err error) {
	if !r.qualified {
		return defaultNamespace, r.name, nil
	}
	if len(r.ident) != 2 {
		return "", "", errors.New(ErrInvalidIdentifier, "invalid identifier", nil).
			AddContext("identifier", r.String()).
			AddContext("parts", strconv.Itoa(len(r.ident)))
	}
	return r.ident[0], r.ident[1], nil
}

func (r TableRef) String() string {
	if !r.qualified {
		return r.name
	}
	return strings.Join(r.ident, ".")
}
