// Package bootstrap wires configured adapters for the command entrypoints.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	postgresadapter "github.com/ericfisherdev/creditpanel/internal/adapter/driven/postgres"
	"github.com/ericfisherdev/creditpanel/internal/adapter/driven/riskmodel"
	sqliteadapter "github.com/ericfisherdev/creditpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/creditpanel/internal/application"
	"github.com/ericfisherdev/creditpanel/internal/config"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

// OpenLedger opens the configured database, applies migrations and returns
// the ledger together with a function that releases the connections.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (driven.Ledger, func() error, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgresadapter.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := postgresadapter.RunMigrations(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("database opened", "driver", cfg.DBDriver)
		return postgresadapter.NewLedgerRepo(db), db.Close, nil

	case config.DriverSQLite:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("database opened", "driver", cfg.DBDriver, "path", db.Path())
		return sqliteadapter.NewLedgerRepo(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// LoadServiceContext loads the model and vocabulary pair named by cfg.
func LoadServiceContext(cfg *config.Config, logger *slog.Logger) (*application.ServiceContext, error) {
	bundle, err := riskmodel.LoadBundle(cfg.ModelPath, cfg.VocabPath)
	if err != nil {
		return nil, err
	}

	sc, err := application.NewServiceContext(bundle.Vocabulary, bundle.Model)
	if err != nil {
		return nil, err
	}

	logger.Info("risk model loaded",
		"kind", bundle.Kind,
		"model_path", cfg.ModelPath,
		"vocab_path", cfg.VocabPath,
	)
	return sc, nil
}
