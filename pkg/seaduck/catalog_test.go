package seaduck

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/gear6io/seaduck/pkg/sqlfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRestCatalog(t *testing.T) {
	db, mock := newMockDB(t)

	expectOK(mock, `INSTALL "iceberg"`)
	expectOK(mock, `CREATE SECRET (TYPE 's3', KEY_ID 'admin', SECRET 'password', ENDPOINT '127.0.0.1:9000', URL_STYLE 'path', USE_SSL 0)`)
	expectOK(mock, `ATTACH 's3://warehouse' AS "iceberg" (TYPE 'iceberg', ENDPOINT 'http://localhost:8181', AUTHORIZATION_TYPE 'none')`)
	expectOK(mock, `USE "iceberg"."main"`)
	expectOK(mock, `DETACH "memory"`)

	cat, err := NewRestCatalog(context.Background(), testURI, testWarehouse,
		WithDB(db),
		WithSecretOptions(sqlfmt.Options{
			sqlfmt.Opt("type", "s3"),
			sqlfmt.Opt("key_id", "admin"),
			sqlfmt.Opt("secret", "password"),
			sqlfmt.Opt("endpoint", "127.0.0.1:9000"),
			sqlfmt.Opt("url_style", "path"),
			sqlfmt.Opt("use_ssl", 0),
		}),
	)
	require.NoError(t, err)
	defer cat.Close()

	assert.Equal(t, "iceberg", cat.Alias())
	assert.Equal(t, "main", cat.DefaultNamespace())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewGlueCatalog(t *testing.T) {
	db, mock := newMockDB(t)

	expectOK(mock, `INSTALL "iceberg"`)
	expectOK(mock, `CREATE SECRET (TYPE 's3', PROVIDER 'credential_chain')`)
	expectOK(mock, `ATTACH '123456789012' AS "iceberg" (TYPE 'iceberg', ENDPOINT_TYPE 'glue')`)
	expectOK(mock, `USE "iceberg"."analytics"`)
	expectOK(mock, `DETACH "memory"`)

	cat, err := NewGlueCatalog(context.Background(), "123456789012", WithDB(db), WithDefaultNamespace("analytics"))
	require.NoError(t, err)
	defer cat.Close()

	assert.Equal(t, "analytics", cat.DefaultNamespace())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewS3TablesCatalog(t *testing.T) {
	const bucket = "arn:aws:s3tables:us-east-2:123456789012:bucket/seaduck"
	db, mock := newMockDB(t)

	expectOK(mock, `INSTALL "iceberg"`)
	expectOK(mock, `INSTALL "aws"`)
	expectOK(mock, `INSTALL "httpfs"`)
	expectOK(mock, `CREATE SECRET (TYPE 's3', PROVIDER 'credential_chain')`)
	expectOK(mock, `ATTACH 'arn:aws:s3tables:us-east-2:123456789012:bucket/seaduck' AS "iceberg" (TYPE 'iceberg', ENDPOINT_TYPE 's3_tables')`)
	expectOK(mock, `USE "iceberg"."main"`)
	expectOK(mock, `DETACH "memory"`)

	cat, err := NewS3TablesCatalog(context.Background(), bucket, WithDB(db))
	require.NoError(t, err)
	defer cat.Close()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewS3TablesCatalogRejectsInvalidARN(t *testing.T) {
	db, mock := newMockDB(t)

	for _, bad := range []string{"not-an-arn", "arn:aws:s3:::bucket"} {
		_, err := NewS3TablesCatalog(context.Background(), bad, WithDB(db))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfig), bad)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewCreatesMissingNamespace(t *testing.T) {
	db, mock := newMockDB(t)

	expectOK(mock, `INSTALL "iceberg"`)
	expectOK(mock, `ATTACH 's3://warehouse' AS "iceberg" (TYPE 'iceberg', ENDPOINT 'http://localhost:8181', AUTHORIZATION_TYPE 'none')`)
	expectQuery(mock, `USE "iceberg"."main"`).
		WillReturnError(stderrors.New(`Catalog Error: SET schema: No catalog + schema named "iceberg.main" found.`))
	expectOK(mock, `CREATE SCHEMA IF NOT EXISTS "iceberg"."main"`)
	expectOK(mock, `USE "iceberg"."main"`)
	expectOK(mock, `DETACH "memory"`)

	cat, err := NewRestCatalog(context.Background(), testURI, testWarehouse, WithDB(db))
	require.NoError(t, err)
	defer cat.Close()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPropagatesNonCatalogErrors(t *testing.T) {
	db, mock := newMockDB(t)
	engineErr := stderrors.New("IO Error: Could not establish connection to http://localhost:8181")

	expectOK(mock, `INSTALL "iceberg"`)
	expectOK(mock, `ATTACH 's3://warehouse' AS "iceberg" (TYPE 'iceberg', ENDPOINT 'http://localhost:8181', AUTHORIZATION_TYPE 'none')`)
	expectQuery(mock, `USE "iceberg"."main"`).WillReturnError(engineErr)

	cat, err := NewRestCatalog(context.Background(), testURI, testWarehouse, WithDB(db))
	require.Error(t, err)
	assert.Nil(t, cat)

	assert.Equal(t, engineErr.Error(), err.Error())
	assert.True(t, errors.Is(err, ErrStatementFailed))
	assert.ErrorIs(t, err, engineErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewFailsOnAttachError(t *testing.T) {
	db, mock := newMockDB(t)

	expectOK(mock, `INSTALL "iceberg"`)
	expectQuery(mock, `ATTACH 's3://warehouse' AS "iceberg" (TYPE 'iceberg', ENDPOINT 'http://localhost:8181', AUTHORIZATION_TYPE 'none')`).
		WillReturnError(stderrors.New("Catalog Error: duplicate alias"))

	_, err := NewRestCatalog(context.Background(), testURI, testWarehouse, WithDB(db))
	require.Error(t, err)
	assert.Equal(t, "Catalog Error: duplicate alias", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	db, mock := newMockDB(t)

	_, err := NewRestCatalog(context.Background(), testURI, testWarehouse,
		WithDB(db),
		WithSecretOptions(sqlfmt.Options{sqlfmt.Opt("key-id", "admin")}),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, errors.Is(err, sqlfmt.ErrInvalidOption))

	_, err = NewRestCatalog(context.Background(), testURI, testWarehouse, WithDB(db), WithDefaultNamespace(" "))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachOptionsOverrideType(t *testing.T) {
	db, mock := newMockDB(t)

	expectOK(mock, `INSTALL "iceberg"`)
	expectOK(mock, `ATTACH 'wh' AS "iceberg" (TYPE 'ICEBERG', READ_ONLY true)`)
	expectOK(mock, `USE "iceberg"."main"`)
	expectOK(mock, `DETACH "memory"`)

	cat, err := New(context.Background(), Config{
		URL:           "wh",
		AttachOptions: sqlfmt.Options{sqlfmt.Opt("read_only", true), sqlfmt.Opt("TYPE", "ICEBERG")},
	}, WithDB(db))
	require.NoError(t, err)
	defer cat.Close()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNamespaceOperations(t *testing.T) {
	cat, mock := newTestCatalog(t)
	ctx := context.Background()

	expectOK(mock, `CREATE SCHEMA "iceberg"."seaduck_test"`)
	expectOK(mock, `CREATE SCHEMA IF NOT EXISTS "iceberg"."seaduck_test"`)
	expectQuery(mock, `SELECT 1 FROM information_schema.schemata WHERE catalog_name = ? AND schema_name = ?`, "iceberg", "seaduck_test").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	expectQuery(mock, `SELECT schema_name FROM information_schema.schemata WHERE catalog_name = ?`, "iceberg").
		WillReturnRows(sqlmock.NewRows([]string{"schema_name"}).AddRow("main").AddRow("seaduck_test"))
	expectOK(mock, `DROP SCHEMA "iceberg"."seaduck_test"`)
	expectOK(mock, `DROP SCHEMA IF EXISTS "iceberg"."seaduck_test"`)
	expectQuery(mock, `SELECT 1 FROM information_schema.schemata WHERE catalog_name = ? AND schema_name = ?`, "iceberg", "seaduck_test").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	require.NoError(t, cat.CreateNamespace(ctx, "seaduck_test", false))
	require.NoError(t, cat.CreateNamespace(ctx, "seaduck_test", true))

	exists, err := cat.NamespaceExists(ctx, "seaduck_test")
	require.NoError(t, err)
	assert.True(t, exists)

	namespaces, err := cat.ListNamespaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "seaduck_test"}, namespaces)

	require.NoError(t, cat.DropNamespace(ctx, "seaduck_test", false))
	require.NoError(t, cat.DropNamespace(ctx, "seaduck_test", true))

	exists, err = cat.NamespaceExists(ctx, "seaduck_test")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNamespaceNamesAreQuoted(t *testing.T) {
	cat, mock := newTestCatalog(t)

	expectOK(mock, `CREATE SCHEMA "iceberg"."we""ird"`)
	require.NoError(t, cat.CreateNamespace(context.Background(), `we"ird`, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTables(t *testing.T) {
	cat, mock := newTestCatalog(t)
	ctx := context.Background()

	expectQuery(mock, `SELECT table_schema, table_name FROM information_schema.tables WHERE table_catalog = ?`, "iceberg").
		WillReturnRows(sqlmock.NewRows([]string{"table_schema", "table_name"}).
			AddRow("main", "events").
			AddRow("seaduck_test", "users"))
	expectQuery(mock, `SELECT table_schema, table_name FROM information_schema.tables WHERE table_catalog = ? AND table_schema = ?`, "iceberg", "seaduck_test").
		WillReturnRows(sqlmock.NewRows([]string{"table_schema", "table_name"}).AddRow("seaduck_test", "users"))
	expectQuery(mock, `SELECT table_schema, table_name FROM information_schema.tables WHERE table_catalog = ? AND table_schema = ?`, "iceberg", "empty").
		WillReturnRows(sqlmock.NewRows([]string{"table_schema", "table_name"}))

	all, err := cat.ListTables(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []table.Identifier{{"main", "events"}, {"seaduck_test", "users"}}, all)

	scoped, err := cat.ListTables(ctx, "seaduck_test")
	require.NoError(t, err)
	assert.Equal(t, []table.Identifier{{"seaduck_test", "users"}}, scoped)

	empty, err := cat.ListTables(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, empty)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableOperations(t *testing.T) {
	cat, mock := newTestCatalog(t)
	ctx := context.Background()

	expectQuery(mock, `SELECT 1 FROM information_schema.tables WHERE table_catalog = ? AND table_schema = ? AND table_name = ?`, "iceberg", "main", "events").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	expectQuery(mock, `SELECT 1 FROM information_schema.tables WHERE table_catalog = ? AND table_schema = ? AND table_name = ?`, "iceberg", "seaduck_test", "events").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	expectOK(mock, `DROP TABLE "iceberg"."main"."events"`)
	expectOK(mock, `DROP TABLE IF EXISTS "iceberg"."seaduck_test"."events"`)

	exists, err := cat.TableExists(ctx, Table("events"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = cat.TableExists(ctx, QualifiedTable("seaduck_test", "events"))
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, cat.DropTable(ctx, Table("events"), false))
	require.NoError(t, cat.DropTable(ctx, QualifiedTable("seaduck_test", "events"), true))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidIdentifierIssuesNoSQL(t *testing.T) {
	cat, mock := newTestCatalog(t)
	ctx := context.Background()

	for _, ref := range []TableRef{
		FromIdentifier(table.Identifier{"events"}),
		FromIdentifier(table.Identifier{"a", "b", "c"}),
		FromIdentifier(nil),
	} {
		_, err := cat.TableExists(ctx, ref)
		assert.True(t, errors.Is(err, ErrInvalidIdentifier), ref.String())

		err = cat.DropTable(ctx, ref, true)
		assert.True(t, errors.Is(err, ErrInvalidIdentifier), ref.String())

		_, err = cat.Snapshots(ctx, ref)
		assert.True(t, errors.Is(err, ErrInvalidIdentifier), ref.String())
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshots(t *testing.T) {
	cat, mock := newTestCatalog(t)
	ctx := context.Background()

	columns := []string{"sequence_number", "snapshot_id", "timestamp_ms", "manifest_list"}
	expectQuery(mock, `SELECT * FROM iceberg_snapshots("iceberg"."main"."events")`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uint64(2), uint64(222), time.UnixMilli(1700000001000).UTC(), "s3://warehouse/snap-2.avro").
			AddRow(uint64(1), uint64(111), time.UnixMilli(1700000000000).UTC(), "s3://warehouse/snap-1.avro"))

	snapshots, err := cat.Snapshots(ctx, Table("events"))
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, uint64(2), snapshots[0]["sequence_number"])
	assert.Equal(t, uint64(1), snapshots[1]["sequence_number"])
	assert.Equal(t, "s3://warehouse/snap-1.avro", snapshots[1]["manifest_list"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableSnapshots(t *testing.T) {
	cat, mock := newTestCatalog(t)

	columns := []string{"sequence_number", "snapshot_id", "timestamp_ms", "manifest_list"}
	expectQuery(mock, `SELECT * FROM iceberg_snapshots("iceberg"."seaduck_test"."events")`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uint64(1), uint64(111), time.UnixMilli(1700000000000).UTC(), "s3://warehouse/snap-1.avro"))

	snapshots, err := cat.TableSnapshots(context.Background(), QualifiedTable("seaduck_test", "events"))
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	assert.Equal(t, int64(1), snapshots[0].SequenceNumber)
	assert.Equal(t, int64(111), snapshots[0].SnapshotID)
	assert.Equal(t, int64(1700000000000), snapshots[0].TimestampMs)
	assert.Equal(t, "s3://warehouse/snap-1.avro", snapshots[0].ManifestList)
	assert.Nil(t, snapshots[0].ParentSnapshotID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL(t *testing.T) {
	cat, mock := newTestCatalog(t)
	ctx := context.Background()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))

	expectQuery(mock, `SELECT ? AS a, ? AS b, ? AS c`, int64(1), "two", ts.UTC()).
		WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c"}).AddRow(int64(1), "two", ts.UTC()))

	res, err := cat.SQL(ctx, "SELECT ? AS a, ? AS b, ? AS c", 1, "two", ts)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, res.Columns())
	assert.Equal(t, [][]any{{int64(1), "two", ts.UTC()}}, res.Rows())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLKeepsEngineErrorText(t *testing.T) {
	cat, mock := newTestCatalog(t)
	engineErr := stderrors.New(`Parser Error: syntax error at or near "SELEC"`)

	mock.ExpectPrepare(`SELEC 1`).WillReturnError(engineErr)

	_, err := cat.SQL(context.Background(), "SELEC 1")
	require.Error(t, err)
	assert.Equal(t, engineErr.Error(), err.Error())
	assert.ErrorIs(t, err, engineErr)
	assert.Equal(t, "SELEC 1", errors.GetContext(err)["sql"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachPostgres(t *testing.T) {
	cat, mock := newTestCatalog(t)
	ctx := context.Background()

	expectOK(mock, `INSTALL "postgres"`)
	expectOK(mock, `ATTACH 'postgresql://localhost/seaduck_test' AS "pg" (TYPE 'postgres', READ_ONLY true)`)
	expectOK(mock, `DETACH "pg"`)

	require.NoError(t, cat.Attach(ctx, "pg", "postgresql://localhost/seaduck_test"))
	require.NoError(t, cat.Detach(ctx, "pg"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachUnsupportedSourceIssuesNoSQL(t *testing.T) {
	cat, mock := newTestCatalog(t)

	for _, url := range []string{"pg://localhost/seaduck_test", "mysql://localhost/db", "sqlite:seaduck.db", "not a url"} {
		err := cat.Attach(context.Background(), "other", url)
		assert.True(t, errors.Is(err, ErrUnsupportedSource), url)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVersions(t *testing.T) {
	cat, mock := newTestCatalog(t)
	ctx := context.Background()

	expectQuery(mock, `SELECT extension_version FROM duckdb_extensions() WHERE extension_name = ?`, "iceberg").
		WillReturnRows(sqlmock.NewRows([]string{"extension_version"}).AddRow("5d3cf9e"))
	expectQuery(mock, `SELECT VERSION() AS version`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("v1.3.2"))

	ext, err := cat.ExtensionVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5d3cf9e", ext)

	version, err := cat.DuckDBVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.3.2", version)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteDelegates(t *testing.T) {
	cat, _ := newTestCatalog(t)

	quoted, err := cat.Quote("it's")
	require.NoError(t, err)
	assert.Equal(t, "'it''s'", quoted)
	assert.Equal(t, `"""events"""`, cat.QuoteIdentifier(`"events"`))

	_, err = cat.Quote(struct{}{})
	assert.True(t, errors.Is(err, sqlfmt.ErrUnsupportedType))
}

func TestCloseIsIdempotent(t *testing.T) {
	cat, _ := newTestCatalog(t)

	assert.NoError(t, cat.Close())
	assert.NoError(t, cat.Close())
}
