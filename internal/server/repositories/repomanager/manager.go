package repomanager

import (
	"context"
	"database/sql"

	"github.com/sealvault/sealvault/internal/dbx"
	"github.com/sealvault/sealvault/internal/server/repositories/entries"
	"github.com/sealvault/sealvault/internal/server/repositories/metadata"
	"github.com/sealvault/sealvault/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// run several repository calls inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Metadata(db dbx.DBTX) metadata.Repository
	Entries(db dbx.DBTX) entries.Repository
}
