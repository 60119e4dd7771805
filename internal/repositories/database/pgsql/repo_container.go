package pgsql

import (
	portsrepo "github.com/bings/visallo/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	graphRepo := newPgxGraphRepository(dbPool)
	workspaceRepo := newPgxWorkspaceRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		GraphRepo:     graphRepo,
		WorkspaceRepo: workspaceRepo,
		UserRepo:      userRepo,
	}
}
