package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/securepay/internal/dbx"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/rows"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or a
// transaction, and runs schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Rows(db dbx.DBTX) rows.Repository
	Profiles(db dbx.DBTX) profiles.Repository
}
