package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/iota-uz/catalog-api/modules"
	"github.com/iota-uz/catalog-api/pkg/application"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/configuration"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catalog-data",
		Short:         "Catalog database maintenance: migrations, reference data and search re-indexing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newReindexCmd())
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	configuration.Use().Unload()
	if err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}

// environment is an application with every built-in module registered, as the server runs it.
type environment struct {
	app  application.Application
	pool *pgxpool.Pool
}

func bootstrap(ctx context.Context) (*environment, error) {
	conf := configuration.Use()
	logger := conf.Logger()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(connectCtx, conf.Database.Opts)
	if err != nil {
		return nil, withCode(exitDB, fmt.Errorf("connect: %w", err))
	}

	app := application.New(&application.ApplicationOptions{
		Pool:       pool,
		Logger:     logger,
		Migrations: application.NewMigrationManager(conf.Database.Opts, conf.MigrationsTable, logger),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		pool.Close()
		return nil, withCode(exitUsage, fmt.Errorf("load modules: %w", err))
	}
	return &environment{app: app, pool: pool}, nil
}

// requestContext returns ctx carrying the pool and a logger, the way requests see them.
func (e *environment) requestContext(ctx context.Context) context.Context {
	ctx = composables.WithPool(ctx, e.pool)
	return composables.WithLogger(ctx, e.app.Logger().WithField("component", "catalog-data"))
}

func (e *environment) Close() {
	e.pool.Close()
}
