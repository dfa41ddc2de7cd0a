package seaduck

import (
	"context"
	"database/sql"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/gear6io/seaduck/pkg/sqlfmt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMemoryExecutor runs statements on a plain in-memory DuckDB, without
// any catalog attached.
func newMemoryExecutor(t *testing.T) *executor {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		db.Close()
	})

	return &executor{conn: conn, logger: zerolog.Nop()}
}

func selectQuoted(t *testing.T, e *executor, v any, cast string) any {
	t.Helper()
	quoted, err := sqlfmt.Quote(v)
	require.NoError(t, err)

	expr := quoted
	if cast != "" {
		expr = "CAST(" + quoted + " AS " + cast + ")"
	}
	res, err := e.query(context.Background(), "SELECT "+expr+" AS value")
	require.NoError(t, err, quoted)
	require.Equal(t, 1, res.Len())
	return res.Rows()[0][0]
}

func TestQuoteRoundTripStrings(t *testing.T) {
	e := newMemoryExecutor(t)

	seed := time.Now().UnixNano()
	rnd := rand.New(rand.NewSource(seed))
	alphabet := []string{"a", "'", `"`, `\`}

	values := []string{"", "it's", `'"\`, `\'`, `''`, `a\\'b"c`, "line\nbreak"}
	for i := 0; i < 20; i++ {
		var b strings.Builder
		for j := 0; j < 19+rnd.Intn(20); j++ {
			b.WriteString(alphabet[rnd.Intn(len(alphabet))])
		}
		values = append(values, b.String())
	}

	for _, v := range values {
		assert.Equal(t, v, selectQuoted(t, e, v, ""), "seed %d", seed)
	}
}

func TestQuoteRoundTripScalars(t *testing.T) {
	e := newMemoryExecutor(t)

	assert.Nil(t, selectQuoted(t, e, nil, ""))
	assert.Equal(t, true, selectQuoted(t, e, true, ""))
	assert.Equal(t, false, selectQuoted(t, e, false, ""))

	for _, v := range []int64{0, 42, -7, 9223372036854775807, -9223372036854775808} {
		assert.EqualValues(t, v, selectQuoted(t, e, v, "BIGINT"))
	}
	assert.EqualValues(t, uint64(18446744073709551615), selectQuoted(t, e, uint64(18446744073709551615), "UBIGINT"))

	for _, v := range []float64{0.5, 1, -2.25, 1e-7, 123456.789, 1.7976931348623157e308} {
		assert.Equal(t, v, selectQuoted(t, e, v, "DOUBLE"))
	}

	for _, ts := range []time.Time{
		time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.FixedZone("", 2*3600+30*60)),
		time.Date(2024, 6, 1, 0, 0, 0, 1000, time.FixedZone("", -5*3600)),
	} {
		got, ok := selectQuoted(t, e, ts, "TIMESTAMPTZ").(time.Time)
		require.True(t, ok)
		assert.True(t, ts.Equal(got), "%s != %s", ts, got)
	}
}

func TestEngineErrorsKeepText(t *testing.T) {
	e := newMemoryExecutor(t)
	ctx := context.Background()

	_, err := e.query(ctx, "SELEC 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatementFailed))
	assert.True(t, strings.HasPrefix(err.Error(), "Parser Error:"), err.Error())

	_, err = e.query(ctx, "SELECT ?", 1, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatementFailed))
	assert.Contains(t, err.Error(), "2")
	assert.Equal(t, "SELECT ?", errors.GetContext(err)["sql"])
}
