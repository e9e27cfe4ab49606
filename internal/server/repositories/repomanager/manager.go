package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/securelinks/internal/dbx"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/assignments"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/documents"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/hits"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/securelinks/internal/server/repositories/secrets"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Documents(db dbx.DBTX) documents.Repository
	Assignments(db dbx.DBTX) assignments.Repository
	Hits(db dbx.DBTX) hits.Repository
	Revocations(db dbx.DBTX) revocations.Repository
	Secrets(db dbx.DBTX) secrets.Repository
}
