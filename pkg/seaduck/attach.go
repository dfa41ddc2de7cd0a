package seaduck

import (
	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/xo/dburl"
)

// source is a database that can be attached next to the Iceberg catalog.
type source struct {
	kind      string
	extension string
	redacted  string
}

// classifySource accepts postgres:// and postgresql:// URLs only. Scheme
// aliases such as pg:// are rejected even though dburl understands them.
func classifySource(raw string) (source, error) {
	u, err := dburl.Parse(raw)
	if err != nil {
		return source{}, errors.New(ErrUnsupportedSource, "unsupported data source", err)
	}

	switch u.OriginalScheme {
	case "postgres", "postgresql":
		return source{kind: "postgres", extension: "postgres", redacted: u.Redacted()}, nil
	default:
		return source{}, unsupportedSource(u.Redacted())
	}
}

func unsupportedSource(url string) error {
	return errors.New(ErrUnsupportedSource, "unsupported data source", nil).AddContext("url", url)
}
