package cli

import (
	"os"
	"path/filepath"

	"github.com/gear6io/seaduck/config"
	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/spf13/cobra"
)

type initOptions struct {
	catalogType string
	uri         string
	warehouse   string
	arn         string
	namespace   string
	force       bool
}

func (a *app) newInitCommand() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a .seaduck.yml configuration",
		Long: `Write a .seaduck.yml configuration file.

The file is created in the given directory, or the working directory
when none is given. Secret options can be added to the catalog.secret
mapping afterwards or supplied through SEADUCK_SECRET_JSON.

Examples:
  seaduck init                                         # local REST catalog
  seaduck init --type rest --uri http://localhost:8181 --warehouse s3://warehouse
  seaduck init --type glue --warehouse 123456789012
  seaduck init --type s3tables --arn arn:aws:s3tables:us-east-2:123456789012:bucket/lake`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.catalogType, "type", config.CatalogREST, "catalog type (rest|glue|s3tables)")
	cmd.Flags().StringVar(&opts.uri, "uri", "", "REST catalog endpoint")
	cmd.Flags().StringVar(&opts.warehouse, "warehouse", "", "warehouse (REST) or AWS account id (Glue)")
	cmd.Flags().StringVar(&opts.arn, "arn", "", "S3 table bucket ARN")
	cmd.Flags().StringVar(&opts.namespace, "namespace", "", "default namespace")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing configuration")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, args []string, opts *initOptions) error {
	d := getDisplayFromContext(cmd.Context())

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	path := filepath.Join(dir, config.FileName)
	if a.configPath != "" {
		path = a.configPath
	}

	if _, err := os.Stat(path); err == nil && !opts.force {
		d.Info("Use --force to overwrite it")
		return errors.New(ErrConfigExists, "configuration already exists", nil).AddContext("path", path)
	}

	cfg := config.LoadDefaultConfig()
	cfg.Catalog.Type = opts.catalogType
	if cfg.Catalog.Type != config.CatalogREST {
		cfg.Catalog.URI = ""
	}
	if opts.uri != "" {
		cfg.Catalog.URI = opts.uri
	}
	cfg.Catalog.Warehouse = opts.warehouse
	cfg.Catalog.ARN = opts.arn
	if opts.namespace != "" {
		cfg.Catalog.DefaultNamespace = opts.namespace
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	d.Success("Wrote %s (%s catalog)", path, cfg.Catalog.Type)
	return nil
}
