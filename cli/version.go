package cli

import (
	"github.com/gear6io/seaduck/display"
	"github.com/spf13/cobra"
)

func (a *app) newVersionCommand() *cobra.Command {
	var engine bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the SeaDuck version. With --engine the configured catalog is
attached and the DuckDB and iceberg extension versions are printed too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := display.TableData{
				Headers: []string{"component", "version"},
				Rows:    [][]any{{"seaduck", Version}},
			}
			if !engine {
				return a.render(cmd, data)
			}

			return a.withCatalog(cmd, func(s *session) error {
				duck, err := s.cat.DuckDBVersion(cmd.Context())
				if err != nil {
					return err
				}
				ext, err := s.cat.ExtensionVersion(cmd.Context())
				if err != nil {
					return err
				}
				data.Rows = append(data.Rows, []any{"duckdb", duck}, []any{"iceberg", ext})
				return a.render(cmd, data)
			})
		},
	}

	cmd.Flags().BoolVar(&engine, "engine", false, "also report DuckDB and extension versions")
	return cmd
}
