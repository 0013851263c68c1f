// Package repomanager provides concrete RepositoryManager implementations:
// one for PostgreSQL (wiring repository constructors and goose migrations)
// and an in-memory one used by tests.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/sealvault/sealvault/internal/dbx"
	"github.com/sealvault/sealvault/internal/server/migrations"
	"github.com/sealvault/sealvault/internal/server/repositories/entries"
	"github.com/sealvault/sealvault/internal/server/repositories/metadata"
	"github.com/sealvault/sealvault/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Metadata returns a metadata.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewPostgresRepository(db)
}

// Entries returns an entries.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Entries(db dbx.DBTX) entries.Repository {
	return entries.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
