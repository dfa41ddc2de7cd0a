package seaduck

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const (
	testURI       = "http://localhost:8181"
	testWarehouse = "s3://warehouse"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// expectQuery expects query to be prepared and run with args.
func expectQuery(mock sqlmock.Sqlmock, query string, args ...driver.Value) *sqlmock.ExpectedQuery {
	eq := mock.ExpectPrepare(query).ExpectQuery()
	if len(args) > 0 {
		eq = eq.WithArgs(args...)
	}
	return eq
}

// expectOK expects a statement that returns no rows.
func expectOK(mock sqlmock.Sqlmock, query string, args ...driver.Value) {
	expectQuery(mock, query, args...).WillReturnRows(sqlmock.NewRows([]string{}))
}

func expectRestBootstrap(mock sqlmock.Sqlmock) {
	expectOK(mock, `INSTALL "iceberg"`)
	expectOK(mock, `ATTACH 's3://warehouse' AS "iceberg" (TYPE 'iceberg', ENDPOINT 'http://localhost:8181', AUTHORIZATION_TYPE 'none')`)
	expectOK(mock, `USE "iceberg"."main"`)
	expectOK(mock, `DETACH "memory"`)
}

// newTestCatalog returns a REST catalog bootstrapped against a mock.
func newTestCatalog(t *testing.T, opts ...Option) (*Catalog, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	expectRestBootstrap(mock)

	cat, err := NewRestCatalog(context.Background(), testURI, testWarehouse, append([]Option{WithDB(db)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat, mock
}
