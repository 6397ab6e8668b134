package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/picshare/internal/dbx"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to an arbitrary DBTX so that
// services can run the same repository code against a plain connection or
// inside a transaction handle.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
