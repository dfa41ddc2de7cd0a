package seaduck

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/gear6io/seaduck/utils"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// statementKinds bounds the "kind" label of statement metrics.
var statementKinds = []string{
	"ATTACH", "CREATE", "DELETE", "DESCRIBE", "DETACH", "DROP", "INSERT",
	"INSTALL", "LOAD", "SELECT", "SET", "SHOW", "UPDATE", "USE", "WITH",
}

type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// executor runs statements on the pinned connection and materializes them.
type executor struct {
	conn    preparer
	logger  zerolog.Logger
	metrics *metrics
}

func (e *executor) query(ctx context.Context, query string, params ...any) (*Result, error) {
	id := utils.NewStatementID()
	kind := statementKind(query)

	start := time.Now()
	res, err := e.run(ctx, query, params)
	elapsed := time.Since(start)
	e.metrics.observe(kind, err, elapsed)

	if err != nil {
		e.logger.Debug().
			Str("statement_id", id).
			Str("kind", kind).
			Dur("duration", elapsed).
			Err(err).
			Msg("Statement failed")
		return nil, errors.Wrap(err, ErrStatementFailed, "").
			AddContext("statement_id", id).
			AddContext("sql", redact(query))
	}

	e.logger.Debug().
		Str("statement_id", id).
		Str("kind", kind).
		Dur("duration", elapsed).
		Int("rows", res.Len()).
		Msg("Statement executed")
	return res, nil
}

func (e *executor) run(ctx context.Context, query string, params []any) (*Result, error) {
	stmt, err := e.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, bindParams(params)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return newResult(columns, out), nil
}

// bindParams normalizes timestamps to UTC so they bind as TIMESTAMP.
func bindParams(params []any) []any {
	return lo.Map(params, func(p any, _ int) any {
		switch v := p.(type) {
		case time.Time:
			return v.UTC()
		case *time.Time:
			if v == nil {
				return nil
			}
			return v.UTC()
		default:
			return p
		}
	})
}

func statementKind(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "OTHER"
	}
	kind := strings.ToUpper(strings.TrimLeft(fields[0], "("))
	if !lo.Contains(statementKinds, kind) {
		return "OTHER"
	}
	return kind
}

// redact hides the option list of CREATE SECRET statements.
func redact(query string) string {
	fields := strings.Fields(query)
	if len(fields) >= 2 && strings.EqualFold(fields[0], "CREATE") && strings.EqualFold(fields[1], "SECRET") {
		return "CREATE SECRET (<redacted>)"
	}
	return query
}
