package cli

import (
	"time"

	"github.com/gear6io/seaduck/display"
	"github.com/gear6io/seaduck/pkg/seaduck"
	"github.com/spf13/cobra"
)

func (a *app) newTableCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect and drop Iceberg tables",
		Long: `Inspect and drop tables of the attached Iceberg catalog.

Tables are named either bare (resolved against the default namespace)
or as namespace.table. The namespace ends at the first dot, so a table
name may contain dots but a namespace name may not.

Examples:
  seaduck table list                    # all namespaces
  seaduck table list analytics          # one namespace
  seaduck table exists analytics.events
  seaduck table snapshots events
  seaduck table drop analytics.events --if-exists`,
	}

	var ifExists bool

	listCmd := &cobra.Command{
		Use:   "list [namespace]",
		Short: "List tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			namespace := ""
			if len(args) > 0 {
				namespace = args[0]
			}
			return a.withCatalog(cmd, func(s *session) error {
				tables, err := s.cat.ListTables(cmd.Context(), namespace)
				if err != nil {
					return err
				}
				data := display.TableData{Headers: []string{"namespace", "table"}}
				for _, ident := range tables {
					data.Rows = append(data.Rows, []any{ident[0], ident[1]})
				}
				return a.render(cmd, data)
			})
		},
	}

	existsCmd := &cobra.Command{
		Use:   "exists <table>",
		Short: "Report whether a table exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd, func(s *session) error {
				exists, err := s.cat.TableExists(cmd.Context(), seaduck.ParseTableRef(args[0]))
				if err != nil {
					return err
				}
				return a.render(cmd, display.TableData{
					Headers: []string{"table", "exists"},
					Rows:    [][]any{{args[0], exists}},
				})
			})
		},
	}

	dropCmd := &cobra.Command{
		Use:   "drop <table>",
		Short: "Drop a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd, func(s *session) error {
				if err := s.cat.DropTable(cmd.Context(), seaduck.ParseTableRef(args[0]), ifExists); err != nil {
					return err
				}
				getDisplayFromContext(cmd.Context()).Success("Table %s dropped", args[0])
				return nil
			})
		},
	}
	dropCmd.Flags().BoolVar(&ifExists, "if-exists", false, "do nothing if the table does not exist")

	snapshotsCmd := &cobra.Command{
		Use:   "snapshots <table>",
		Short: "Show the snapshot history of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd, func(s *session) error {
				snapshots, err := s.cat.TableSnapshots(cmd.Context(), seaduck.ParseTableRef(args[0]))
				if err != nil {
					return err
				}
				data := display.TableData{
					Headers: []string{"sequence_number", "snapshot_id", "timestamp", "manifest_list"},
				}
				for _, snap := range snapshots {
					data.Rows = append(data.Rows, []any{
						snap.SequenceNumber,
						snap.SnapshotID,
						time.UnixMilli(snap.TimestampMs).UTC(),
						snap.ManifestList,
					})
				}
				return a.render(cmd, data)
			})
		},
	}

	cmd.AddCommand(listCmd, existsCmd, dropCmd, snapshotsCmd)
	return cmd
}
