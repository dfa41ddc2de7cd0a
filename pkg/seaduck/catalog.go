// Package seaduck attaches an Apache Iceberg catalog to an embedded DuckDB
// and exposes namespace, table, snapshot and raw SQL operations on it.
// DuckDB's iceberg extension does the actual work; this package builds the
// statements, quotes values and reshapes results.
package seaduck

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/apache/iceberg-go/table"
	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/gear6io/seaduck/pkg/sqlfmt"
	"github.com/marcboeker/go-duckdb/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// Catalog is a DuckDB connection with one Iceberg catalog attached under
// CatalogAlias. It is not safe for concurrent use.
type Catalog struct {
	db        *sql.DB
	ownsDB    bool
	conn      *sql.Conn
	exec      *executor
	alias     string
	namespace string
	logger    zerolog.Logger
}

// New opens DuckDB, attaches the catalog described by cfg and selects its
// default namespace, creating it when it does not exist yet.
func New(ctx context.Context, cfg Config, opts ...Option) (*Catalog, error) {
	s := newSettings(cfg, opts)
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	m, err := newMetrics(s.registerer)
	if err != nil {
		return nil, errors.New(ErrInvalidConfig, "failed to register metrics", err)
	}

	db, ownsDB := s.db, false
	if db == nil {
		db, err = sql.Open("duckdb", "")
		if err != nil {
			return nil, errors.New(ErrConnectionFailed, "failed to open duckdb", err)
		}
		ownsDB = true
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		if ownsDB {
			db.Close()
		}
		return nil, errors.New(ErrConnectionFailed, "failed to acquire duckdb connection", err)
	}

	c := &Catalog{
		db:        db,
		ownsDB:    ownsDB,
		conn:      conn,
		exec:      &executor{conn: conn, logger: s.logger, metrics: m},
		alias:     CatalogAlias,
		namespace: s.config.DefaultNamespace,
		logger:    s.logger,
	}

	if err := c.bootstrap(ctx, s.config); err != nil {
		c.Close()
		return nil, err
	}

	c.logger.Info().
		Str("alias", c.alias).
		Str("namespace", c.namespace).
		Msg("Catalog attached")
	return c, nil
}

func (c *Catalog) bootstrap(ctx context.Context, cfg Config) error {
	if err := c.install(ctx, "iceberg"); err != nil {
		return err
	}
	for _, ext := range cfg.Extensions {
		if err := c.install(ctx, ext); err != nil {
			return err
		}
	}

	if len(cfg.SecretOptions) > 0 {
		if err := c.createSecret(ctx, cfg.SecretOptions); err != nil {
			return err
		}
	}

	attachOpts := sqlfmt.Options{sqlfmt.Opt("type", "iceberg")}.Merge(cfg.AttachOptions)
	if err := c.attach(ctx, c.alias, cfg.URL, attachOpts); err != nil {
		return err
	}

	if err := c.useDefaultNamespace(ctx); err != nil {
		return err
	}

	return c.Detach(ctx, memoryCatalog)
}

func (c *Catalog) useDefaultNamespace(ctx context.Context) error {
	err := c.use(ctx, c.namespace)
	if err == nil {
		return nil
	}
	if !isCatalogError(err) {
		return err
	}

	c.logger.Info().Str("namespace", c.namespace).Msg("Default namespace missing, creating it")
	if err := c.CreateNamespace(ctx, c.namespace, true); err != nil {
		return err
	}
	return c.use(ctx, c.namespace)
}

// isCatalogError reports whether err is DuckDB's catalog error class, which
// is what a USE on a missing schema produces.
func isCatalogError(err error) bool {
	var duckErr *duckdb.Error
	if stderrors.As(err, &duckErr) {
		return duckErr.Type == duckdb.ErrorTypeCatalog
	}
	return strings.HasPrefix(err.Error(), "Catalog Error:")
}

func (c *Catalog) install(ctx context.Context, extension string) error {
	return c.run(ctx, "INSTALL "+sqlfmt.QuoteIdentifier(extension))
}

func (c *Catalog) createSecret(ctx context.Context, opts sqlfmt.Options) error {
	clause, err := opts.Render()
	if err != nil {
		return err
	}
	return c.run(ctx, "CREATE SECRET ("+clause+")")
}

func (c *Catalog) attach(ctx context.Context, alias, url string, opts sqlfmt.Options) error {
	clause, err := opts.Render()
	if err != nil {
		return err
	}
	return c.run(ctx, "ATTACH "+sqlfmt.QuoteString(url)+" AS "+sqlfmt.QuoteIdentifier(alias)+" ("+clause+")")
}

func (c *Catalog) use(ctx context.Context, namespace string) error {
	return c.run(ctx, "USE "+sqlfmt.QuoteQualified(c.alias, namespace))
}

func (c *Catalog) run(ctx context.Context, query string, params ...any) error {
	_, err := c.exec.query(ctx, query, params...)
	return err
}

// ListNamespaces returns the schemas of the attached catalog in engine order.
func (c *Catalog) ListNamespaces(ctx context.Context) ([]string, error) {
	res, err := c.exec.query(ctx, "SELECT schema_name FROM information_schema.schemata WHERE catalog_name = ?", c.alias)
	if err != nil {
		return nil, err
	}
	values, _ := res.Column("schema_name")
	return lo.Map(values, func(v any, _ int) string {
		return cast.ToString(v)
	}), nil
}

// CreateNamespace creates a schema in the attached catalog.
func (c *Catalog) CreateNamespace(ctx context.Context, name string, ifNotExists bool) error {
	query := "CREATE SCHEMA "
	if ifNotExists {
		query += "IF NOT EXISTS "
	}
	return c.run(ctx, query+sqlfmt.QuoteQualified(c.alias, name))
}

// NamespaceExists reports whether the schema exists in the attached catalog.
func (c *Catalog) NamespaceExists(ctx context.Context, name string) (bool, error) {
	res, err := c.exec.query(ctx, "SELECT 1 FROM information_schema.schemata WHERE catalog_name = ? AND schema_name = ?", c.alias, name)
	if err != nil {
		return false, err
	}
	return res.Len() > 0, nil
}

// DropNamespace drops a schema. Schemas that still hold tables are rejected
// by the engine.
func (c *Catalog) DropNamespace(ctx context.Context, name string, ifExists bool) error {
	query := "DROP SCHEMA "
	if ifExists {
		query += "IF EXISTS "
	}
	return c.run(ctx, query+sqlfmt.QuoteQualified(c.alias, name))
}

// ListTables returns namespace/name identifiers. An empty namespace lists
// the tables of every namespace.
func (c *Catalog) ListTables(ctx context.Context, namespace string) ([]table.Identifier, error) {
	query := "SELECT table_schema, table_name FROM information_schema.tables WHERE table_catalog = ?"
	params := []any{c.alias}
	if namespace != "" {
		query += " AND table_schema = ?"
		params = append(params, namespace)
	}

	res, err := c.exec.query(ctx, query, params...)
	if err != nil {
		return nil, err
	}

	idents := make([]table.Identifier, 0, res.Len())
	for _, row := range res.Rows() {
		idents = append(idents, table.Identifier{cast.ToString(row[0]), cast.ToString(row[1])})
	}
	return idents, nil
}

// TableExists reports whether the referenced table exists.
func (c *Catalog) TableExists(ctx context.Context, ref TableRef) (bool, error) {
	namespace, name, err := ref.resolve(c.namespace)
	if err != nil {
		return false, err
	}
	res, err := c.exec.query(ctx,
		"SELECT 1 FROM information_schema.tables WHERE table_catalog = ? AND table_schema = ? AND table_name = ?",
		c.alias, namespace, name)
	if err != nil {
		return false, err
	}
	return res.Len() > 0, nil
}

// DropTable drops the referenced table.
func (c *Catalog) DropTable(ctx context.Context, ref TableRef, ifExists bool) error {
	quoted, err := c.quoteTable(ref)
	if err != nil {
		return err
	}
	query := "DROP TABLE "
	if ifExists {
		query += "IF EXISTS "
	}
	return c.run(ctx, query+quoted)
}

// Snapshots returns the table's snapshot rows as the engine reports them.
func (c *Catalog) Snapshots(ctx context.Context, ref TableRef) ([]map[string]any, error) {
	res, err := c.snapshots(ctx, ref)
	if err != nil {
		return nil, err
	}
	return res.Maps(), nil
}

func (c *Catalog) snapshots(ctx context.Context, ref TableRef) (*Result, error) {
	quoted, err := c.quoteTable(ref)
	if err != nil {
		return nil, err
	}
	return c.exec.query(ctx, "SELECT * FROM iceberg_snapshots("+quoted+")")
}

// SQL runs text as-is with positional parameters.
func (c *Catalog) SQL(ctx context.Context, text string, params ...any) (*Result, error) {
	return c.exec.query(ctx, text, params...)
}

// Attach attaches a Postgres database read-only under alias.
func (c *Catalog) Attach(ctx context.Context, alias, url string) error {
	src, err := classifySource(url)
	if err != nil {
		return err
	}
	if err := c.install(ctx, src.extension); err != nil {
		return err
	}
	opts := sqlfmt.Options{sqlfmt.Opt("type", src.kind), sqlfmt.Opt("read_only", true)}
	if err := c.attach(ctx, alias, url, opts); err != nil {
		return err
	}
	c.logger.Info().Str("alias", alias).Str("source", src.redacted).Msg("Source attached")
	return nil
}

// Detach detaches the database attached under alias.
func (c *Catalog) Detach(ctx context.Context, alias string) error {
	return c.run(ctx, "DETACH "+sqlfmt.QuoteIdentifier(alias))
}

// ExtensionVersion returns the installed iceberg extension version, or an
// empty string when the engine does not report one.
func (c *Catalog) ExtensionVersion(ctx context.Context) (string, error) {
	res, err := c.exec.query(ctx, "SELECT extension_version FROM duckdb_extensions() WHERE extension_name = ?", "iceberg")
	if err != nil {
		return "", err
	}
	return firstString(res), nil
}

// DuckDBVersion returns the engine version.
func (c *Catalog) DuckDBVersion(ctx context.Context) (string, error) {
	res, err := c.exec.query(ctx, "SELECT VERSION() AS version")
	if err != nil {
		return "", err
	}
	return firstString(res), nil
}

func firstString(res *Result) string {
	rows := res.Rows()
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}
	return cast.ToString(rows[0][0])
}

// Quote renders v as a SQL literal.
func (c *Catalog) Quote(v any) (string, error) {
	return sqlfmt.Quote(v)
}

// QuoteIdentifier renders name as a quoted SQL identifier.
func (c *Catalog) QuoteIdentifier(name string) string {
	return sqlfmt.QuoteIdentifier(name)
}

func (c *Catalog) quoteTable(ref TableRef) (string, error) {
	namespace, name, err := ref.resolve(c.namespace)
	if err != nil {
		return "", err
	}
	return sqlfmt.QuoteQualified(c.alias, namespace, name), nil
}

// DefaultNamespace returns the namespace bare table names resolve against.
func (c *Catalog) DefaultNamespace() string {
	return c.namespace
}

// Alias returns the name the Iceberg catalog is attached under.
func (c *Catalog) Alias() string {
	return c.alias
}

// Close releases the pinned connection, and the database when New opened it.
func (c *Catalog) Close() error {
	var errs []error
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
		c.conn = nil
	}
	if c.ownsDB && c.db != nil {
		errs = append(errs, c.db.Close())
		c.db = nil
	}
	return stderrors.Join(errs...)
}
