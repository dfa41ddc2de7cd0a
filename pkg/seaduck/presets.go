package seaduck

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/gear6io/seaduck/pkg/errors"
	"github.com/gear6io/seaduck/pkg/sqlfmt"
)

// credentialChainSecret lets DuckDB resolve AWS credentials itself.
func credentialChainSecret() sqlfmt.Options {
	return sqlfmt.Options{
		sqlfmt.Opt("type", "s3"),
		sqlfmt.Opt("provider", "credential_chain"),
	}
}

// RestConfig attaches an Iceberg REST catalog at uri without authorization.
// Storage credentials, if any, are passed with WithSecretOptions.
func RestConfig(uri, warehouse string) Config {
	return Config{
		URL:              warehouse,
		DefaultNamespace: DefaultNamespace,
		AttachOptions: sqlfmt.Options{
			sqlfmt.Opt("endpoint", uri),
			sqlfmt.Opt("authorization_type", "none"),
		},
	}
}

// GlueConfig attaches the AWS Glue catalog of the given warehouse
// (an AWS account id).
func GlueConfig(warehouse string) Config {
	return Config{
		URL:              warehouse,
		DefaultNamespace: DefaultNamespace,
		AttachOptions:    sqlfmt.Options{sqlfmt.Opt("endpoint_type", "glue")},
		SecretOptions:    credentialChainSecret(),
	}
}

// S3TablesConfig attaches the S3 table bucket identified by tableBucketARN.
func S3TablesConfig(tableBucketARN string) Config {
	return Config{
		URL:              tableBucketARN,
		DefaultNamespace: DefaultNamespace,
		AttachOptions:    sqlfmt.Options{sqlfmt.Opt("endpoint_type", "s3_tables")},
		SecretOptions:    credentialChainSecret(),
		Extensions:       []string{"aws", "httpfs"},
	}
}

// ValidateTableBucketARN checks that s is a syntactically valid S3 Tables ARN.
func ValidateTableBucketARN(s string) error {
	parsed, err := arn.Parse(s)
	if err != nil {
		return errors.New(ErrInvalidConfig, "invalid table bucket ARN", err).AddContext("arn", s)
	}
	if parsed.Service != "s3tables" {
		return errors.New(ErrInvalidConfig, "ARN does not name an S3 Tables resource", nil).
			AddContext("arn", s).
			AddContext("service", parsed.Service)
	}
	return nil
}

// NewRestCatalog attaches an Iceberg REST catalog.
func NewRestCatalog(ctx context.Context, uri, warehouse string, opts ...Option) (*Catalog, error) {
	return New(ctx, RestConfig(uri, warehouse), opts...)
}

// NewGlueCatalog attaches an AWS Glue catalog.
func NewGlueCatalog(ctx context.Context, warehouse string, opts ...Option) (*Catalog, error) {
	return New(ctx, GlueConfig(warehouse), opts...)
}

// NewS3TablesCatalog attaches an S3 table bucket.
func NewS3TablesCatalog(ctx context.Context, tableBucketARN string, opts ...Option) (*Catalog, error) {
	if err := ValidateTableBucketARN(tableBucketARN); err != nil {
		return nil, err
	}
	return New(ctx, S3TablesConfig(tableBucketARN), opts...)
}
