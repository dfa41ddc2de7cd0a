package cli

import (
	"time"

	"github.com/gear6io/seaduck/display"
	"github.com/spf13/cobra"
)

type sqlOptions struct {
	params  []string
	attach  []string
	maxRows int
	timing  bool
}

func (a *app) newSQLCommand() *cobra.Command {
	opts := &sqlOptions{}

	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Run a SQL statement against the attached catalog",
		Long: `Run a SQL statement on the DuckDB connection that has the Iceberg
catalog attached as "iceberg" with the default namespace selected.

Positional parameters (?) are bound from --param in order. A value may
carry a type prefix: int:, float:, bool:, ts: or str:. The value null
binds NULL; anything else binds as text.

Examples:
  seaduck sql "SELECT * FROM events LIMIT 10"
  seaduck sql "INSERT INTO events VALUES (?, ?)" --param int:1 --param hello
  seaduck sql "SELECT * FROM pg.public.users" --attach pg=postgres://localhost/app
  seaduck sql "SHOW ALL TABLES" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSQL(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "positional parameter (repeatable)")
	cmd.Flags().StringArrayVar(&opts.attach, "attach", nil, "attach a Postgres database read-only as alias=url (repeatable)")
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", 0, "maximum number of rows to print (0 prints all)")
	cmd.Flags().BoolVar(&opts.timing, "timing", false, "report execution time")
	return cmd
}

func (a *app) runSQL(cmd *cobra.Command, query string, opts *sqlOptions) error {
	ctx := cmd.Context()
	d := getDisplayFromContext(ctx)

	params, err := parseParams(opts.params)
	if err != nil {
		return err
	}

	return a.withCatalog(cmd, func(s *session) error {
		for _, pair := range opts.attach {
			alias, url, err := splitAssignment(pair)
			if err != nil {
				return err
			}
			if err := s.cat.Attach(ctx, alias, url); err != nil {
				return err
			}
		}

		start := time.Now()
		res, err := s.cat.SQL(ctx, query, params...)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		rows := res.Rows()
		if opts.maxRows > 0 && len(rows) > opts.maxRows {
			d.Warning("Showing first %d of %d rows", opts.maxRows, len(rows))
			rows = rows[:opts.maxRows]
		}

		if err := a.render(cmd, display.TableData{Headers: res.Columns(), Rows: rows}); err != nil {
			return err
		}

		if opts.timing {
			d.Info("%d rows in %v", res.Len(), elapsed.Round(time.Millisecond))
		}
		return nil
	})
}
