package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/aviato/internal/dbx"
	"github.com/dmitrijs2005/aviato/internal/server/repositories/conversations"
	"github.com/dmitrijs2005/aviato/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Conversations(db dbx.DBTX) conversations.Repository
}
