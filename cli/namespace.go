package cli

import (
	"github.com/gear6io/seaduck/display"
	"github.com/spf13/cobra"
)

func (a *app) newNamespaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "namespace",
		Aliases: []string{"ns"},
		Short:   "Manage catalog namespaces",
		Long: `Manage namespaces of the attached Iceberg catalog.

Examples:
  seaduck namespace list
  seaduck namespace create analytics
  seaduck namespace exists analytics
  seaduck namespace drop analytics --if-exists`,
	}

	var ifNotExists, ifExists bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd, func(s *session) error {
				namespaces, err := s.cat.ListNamespaces(cmd.Context())
				if err != nil {
					return err
				}
				data := display.TableData{Headers: []string{"namespace"}}
				for _, ns := range namespaces {
					data.Rows = append(data.Rows, []any{ns})
				}
				return a.render(cmd, data)
			})
		},
	}

	createCmd := &cobra.Command{
		Use:   "create <namespace>",
		Short: "Create a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd, func(s *session) error {
				if err := s.cat.CreateNamespace(cmd.Context(), args[0], ifNotExists); err != nil {
					return err
				}
				getDisplayFromContext(cmd.Context()).Success("Namespace %s created", args[0])
				return nil
			})
		},
	}
	createCmd.Flags().BoolVar(&ifNotExists, "if-not-exists", false, "do nothing if the namespace exists")

	existsCmd := &cobra.Command{
		Use:   "exists <namespace>",
		Short: "Report whether a namespace exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd, func(s *session) error {
				exists, err := s.cat.NamespaceExists(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.render(cmd, display.TableData{
					Headers: []string{"namespace", "exists"},
					Rows:    [][]any{{args[0], exists}},
				})
			})
		},
	}

	dropCmd := &cobra.Command{
		Use:   "drop <namespace>",
		Short: "Drop an empty namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd, func(s *session) error {
				if err := s.cat.DropNamespace(cmd.Context(), args[0], ifExists); err != nil {
					return err
				}
				getDisplayFromContext(cmd.Context()).Success("Namespace %s dropped", args[0])
				return nil
			})
		},
	}
	dropCmd.Flags().BoolVar(&ifExists, "if-exists", false, "do nothing if the namespace does not exist")

	cmd.AddCommand(listCmd, createCmd, existsCmd, dropCmd)
	return cmd
}

// withCatalog opens the configured catalog and runs fn against it.
func (a *app) withCatalog(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := a.openCatalog(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s); err != nil {
		s.logger.Error().Str("cmd", cmd.CommandPath()).Err(err).Msg("Command failed")
		return err
	}
	return nil
}
