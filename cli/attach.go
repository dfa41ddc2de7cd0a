package cli

import (
	"github.com/gear6io/seaduck/display"
	"github.com/spf13/cobra"
)

func (a *app) newAttachCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <alias> <url>",
		Short: "Check that a Postgres database can be attached",
		Long: `Attach a Postgres database read-only next to the Iceberg catalog,
list the tables it exposes and detach it again. Only postgres:// and
postgresql:// URLs are accepted.

To query an attached database use 'seaduck sql --attach alias=url'.

Examples:
  seaduck attach pg postgres://localhost/app`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, url := args[0], args[1]
			ctx := cmd.Context()

			return a.withCatalog(cmd, func(s *session) (err error) {
				if err := s.cat.Attach(ctx, alias, url); err != nil {
					return err
				}
				defer func() {
					if detachErr := s.cat.Detach(ctx, alias); detachErr != nil {
						s.logger.Warn().Str("alias", alias).Err(detachErr).Msg("Failed to detach source")
						if err == nil {
							err = detachErr
						}
					}
				}()

				res, err := s.cat.SQL(ctx,
					"SELECT table_schema, table_name FROM information_schema.tables WHERE table_catalog = ? ORDER BY 1, 2",
					alias)
				if err != nil {
					return err
				}
				return a.render(cmd, display.TableData{Headers: res.Columns(), Rows: res.Rows()})
			})
		},
	}
}
