package application

import (
	"context"
	"database/sql"
	"embed"

	"github.com/go-faster/errors"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// MigrationManager applies the goose migrations embedded by each module.
// All modules share one version table, so versions must be unique across modules.
type MigrationManager interface {
	RegisterSchema(fs *embed.FS, dir string)
	Run(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type schemaSource struct {
	fs  *embed.FS
	dir string
}

type gooseMigrationManager struct {
	dsn     string
	table   string
	logger  *logrus.Logger
	schemas []schemaSource
}

func NewMigrationManager(dsn, table string, logger *logrus.Logger) MigrationManager {
	return &gooseMigrationManager{dsn: dsn, table: table, logger: logger}
}

func (m *gooseMigrationManager) RegisterSchema(fs *embed.FS, dir string) {
	m.schemas = append(m.schemas, schemaSource{fs: fs, dir: dir})
}

func (m *gooseMigrationManager) open() (*sql.DB, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}
	if m.table != "" {
		goose.SetTableName(m.table)
	}
	db, err := sql.Open("postgres", m.dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open migrations connection")
	}
	return db, nil
}

func (m *gooseMigrationManager) Run(ctx context.Context) error {
	db, err := m.open()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, schema := range m.schemas {
		goose.SetBaseFS(schema.fs)
		m.logger.WithField("dir", schema.dir).Info("applying migrations")
		if err := goose.UpContext(ctx, db, schema.dir, goose.WithAllowMissing()); err != nil {
			return errors.Wrapf(err, "migrate %s", schema.dir)
		}
	}
	goose.SetBaseFS(nil)
	return nil
}

// Rollback reverts the most recent migration. Schemas are tried newest first
// because the latest applied version belongs to the last registered module that has one.
func (m *gooseMigrationManager) Rollback(ctx context.Context) error {
	db, err := m.open()
	if err != nil {
		return err
	}
	defer db.Close()
	defer goose.SetBaseFS(nil)

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return errors.Wrap(err, "read schema version")
	}
	for i := len(m.schemas) - 1; i >= 0; i-- {
		schema := m.schemas[i]
		goose.SetBaseFS(schema.fs)
		migrations, err := goose.CollectMigrations(schema.dir, 0, goose.MaxVersion)
		if err != nil {
			return errors.Wrapf(err, "collect %s", schema.dir)
		}
		if _, err := migrations.Current(current); err != nil {
			continue
		}
		m.logger.WithFields(logrus.Fields{"dir": schema.dir, "version": current}).Info("rolling back migration")
		return goose.DownContext(ctx, db, schema.dir)
	}
	return errors.Errorf("no registered schema owns version %d", current)
}

type nopMigrationManager struct{}

// NopMigrationManager is used when the application runs without a migrations connection.
func NopMigrationManager() MigrationManager {
	return nopMigrationManager{}
}

func (nopMigrationManager) RegisterSchema(*embed.FS, string) {}
func (nopMigrationManager) Run(context.Context) error        { return nil }
func (nopMigrationManager) Rollback(context.Context) error   { return nil }
