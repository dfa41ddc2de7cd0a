package cli

import (
	"context"
	"io"
	"os"

	"github.com/gear6io/seaduck/catalog"
	"github.com/gear6io/seaduck/config"
	"github.com/gear6io/seaduck/display"
	"github.com/gear6io/seaduck/pkg/seaduck"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// app carries state shared by every command of one invocation.
type app struct {
	configPath string
	format     string
	verbose    bool

	// catalogOpts are appended when a catalog is opened.
	catalogOpts []seaduck.Option
}

// NewRootCommand builds the seaduck command tree. opts are passed to every
// catalog the commands open.
func NewRootCommand(opts ...seaduck.Option) *cobra.Command {
	a := &app{catalogOpts: opts}

	rootCmd := &cobra.Command{
		Use:   "seaduck",
		Short: "Query Apache Iceberg catalogs with DuckDB",
		Long: `SeaDuck attaches an Apache Iceberg catalog (REST, AWS Glue or
S3 Tables) to an embedded DuckDB and runs SQL against it.

Run 'seaduck init' to write a .seaduck.yml, then use the namespace,
table and sql commands.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to .seaduck.yml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().StringVar(&a.format, "format", "auto", "output format: auto, table, csv, json")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log statements to stderr")

	rootCmd.AddCommand(
		a.newInitCommand(),
		a.newNamespaceCommand(),
		a.newTableCommand(),
		a.newSQLCommand(),
		a.newAttachCommand(),
		a.newVersionCommand(),
	)
	return rootCmd
}

// ExecuteWithContext runs the command tree with the display stored in ctx.
func ExecuteWithContext(ctx context.Context, args []string) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func getDisplayFromContext(ctx context.Context) display.Display {
	return display.GetDisplayOrDefault(ctx)
}

// resolveConfigPath returns --config or the nearest .seaduck.yml.
func (a *app) resolveConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return config.FindConfig(wd)
}

// session is an open catalog plus the resources that go with it.
type session struct {
	cat    *seaduck.Catalog
	logger zerolog.Logger
	closer io.Closer
}

func (s *session) Close() error {
	err := s.cat.Close()
	if cerr := s.closer.Close(); err == nil {
		err = cerr
	}
	return err
}

// openCatalog loads the configuration, sets up logging and attaches the
// configured catalog.
func (a *app) openCatalog(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	d := getDisplayFromContext(ctx)

	path, err := a.resolveConfigPath()
	if err != nil {
		d.Info("Try running 'seaduck init' first")
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	if a.verbose {
		logCfg.Level = zerolog.DebugLevel.String()
		logCfg.Console = true
	}
	logger, closer, err := config.SetupLogger(logCfg)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("cmd", cmd.Name()).Str("config", path).Str("catalog_type", cfg.Catalog.Type).Msg("Opening catalog")

	opts := append([]seaduck.Option{seaduck.WithLogger(logger)}, a.catalogOpts...)
	cat, err := catalog.NewCatalog(ctx, cfg, opts...)
	if err != nil {
		closer.Close()
		logger.Error().Str("cmd", cmd.Name()).Err(err).Msg("Failed to attach catalog")
		return nil, err
	}

	return &session{cat: cat, logger: logger, closer: closer}, nil
}

// outputFormat resolves --format against the terminal state of stdout.
func (a *app) outputFormat() (display.Format, error) {
	return display.ParseFormat(a.format, display.IsTerminal(os.Stdout))
}

// render writes data in the selected format.
func (a *app) render(cmd *cobra.Command, data display.TableData) error {
	format, err := a.outputFormat()
	if err != nil {
		return err
	}
	return getDisplayFromContext(cmd.Context()).Table(data).WithFormat(format).Render()
}
