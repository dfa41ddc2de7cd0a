package seaduck

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/gear6io/seaduck/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementKind(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT 1", "SELECT"},
		{"  select * from t", "SELECT"},
		{"(SELECT 1) UNION (SELECT 2)", "SELECT"},
		{`CREATE SCHEMA "iceberg"."x"`, "CREATE"},
		{"WITH a AS (SELECT 1) SELECT * FROM a", "WITH"},
		{"PRAGMA version", "OTHER"},
		{"", "OTHER"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statementKind(tt.query), tt.query)
	}
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "CREATE SECRET (<redacted>)", redact("CREATE SECRET (TYPE 's3', SECRET 'password')"))
	assert.Equal(t, "CREATE SECRET (<redacted>)", redact("create  secret (KEY_ID 'admin')"))
	assert.Equal(t, `CREATE SCHEMA "iceberg"."secret"`, redact(`CREATE SCHEMA "iceberg"."secret"`))
}

func TestBindParamsNormalizesTimestamps(t *testing.T) {
	local := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("PDT", -7*3600))
	var nilTime *time.Time

	got := bindParams([]any{local, &local, nilTime, "x", 1, nil})

	require.Len(t, got, 6)
	assert.Equal(t, local.UTC(), got[0])
	assert.Equal(t, local.UTC(), got[1])
	assert.Nil(t, got[2])
	assert.Equal(t, "x", got[3])
	assert.Equal(t, 1, got[4])
	assert.Nil(t, got[5])
}

func TestExecutorErrorContext(t *testing.T) {
	cat, mock := newTestCatalog(t)
	engineErr := stderrors.New("Invalid Input Error: secret already exists")

	expectQuery(mock, "CREATE SECRET (TYPE 's3', SECRET 'password')").WillReturnError(engineErr)

	_, err := cat.SQL(context.Background(), "CREATE SECRET (TYPE 's3', SECRET 'password')")
	require.Error(t, err)

	ctx := errors.GetContext(err)
	assert.Equal(t, "CREATE SECRET (<redacted>)", ctx["sql"])
	_, parseErr := utils.ParseStatementID(ctx["statement_id"])
	assert.NoError(t, parseErr)
}

func TestExecutorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cat, mock := newTestCatalog(t, WithMetrics(reg))

	expectQuery(mock, "SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	expectQuery(mock, "SELECT 2").WillReturnError(stderrors.New("Binder Error: boom"))

	_, err := cat.SQL(context.Background(), "SELECT 1")
	require.NoError(t, err)
	_, err = cat.SQL(context.Background(), "SELECT 2")
	require.Error(t, err)

	m := cat.exec.metrics
	assert.Equal(t, float64(1), testutil.ToFloat64(m.statements.WithLabelValues("SELECT", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.statements.WithLabelValues("SELECT", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.statements.WithLabelValues("USE", "ok")))
	assert.Equal(t, 5, testutil.CollectAndCount(m.duration))
}

func TestMetricsReuseRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := newMetrics(reg)
	require.NoError(t, err)
	second, err := newMetrics(reg)
	require.NoError(t, err)

	assert.Same(t, first.statements, second.statements)
	assert.Same(t, first.duration, second.duration)

	none, err := newMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
	none.observe("SELECT", nil, time.Millisecond)
}
