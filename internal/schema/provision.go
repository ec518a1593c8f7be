// Package schema provisions the warehouse layout: the bronze, silver and
// gold schemas plus the tables and views inside them. All DDL is embedded
// and idempotent, so Provision can run before every batch.
package schema

import (
	"context"
	"embed"

	"go.uber.org/zap"

	"flakeforge/internal/warehouse"
	"flakeforge/pkg/errors"
)

//go:embed ddl/*.sql
var ddlFiles embed.FS

// scripts are applied in dependency order: schemas first, then tables,
// then the views that read from them.
var scripts = []string{
	"ddl/schemas.sql",
	"ddl/bronze.sql",
	"ddl/silver.sql",
	"ddl/gold.sql",
}

// Provisioner applies the embedded DDL scripts against a warehouse.
type Provisioner struct {
	warehouse *warehouse.Service
	logger    *zap.Logger
}

// NewProvisioner creates a provisioner bound to the given warehouse service.
func NewProvisioner(svc *warehouse.Service, logger *zap.Logger) *Provisioner {
	return &Provisioner{
		warehouse: svc,
		logger:    logger,
	}
}

// Provision creates the three schemas and all bronze, silver and gold
// objects. Tables use IF NOT EXISTS so existing data survives; the gold
// views are always replaced with the current definitions.
func (p *Provisioner) Provision(ctx context.Context) error {
	for _, name := range scripts {
		if err := p.apply(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// ProvisionSchemas creates only the bronze/silver/gold schemas, leaving
// existing tables untouched. Used on normal runs where tables already exist.
func (p *Provisioner) ProvisionSchemas(ctx context.Context) error {
	return p.apply(ctx, "ddl/schemas.sql")
}

// ProvisionViews re-applies the gold view definitions.
func (p *Provisioner) ProvisionViews(ctx context.Context) error {
	return p.apply(ctx, "ddl/gold.sql")
}

func (p *Provisioner) apply(ctx context.Context, name string) error {
	script, err := ddlFiles.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to read embedded DDL script").
			WithContext("script", name)
	}

	p.logger.Debug("Applying DDL script", zap.String("script", name))
	if err := p.warehouse.ExecScript(ctx, string(script)); err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLExecution, "Failed to apply DDL script").
			WithContext("script", name)
	}
	return nil
}
