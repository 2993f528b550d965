package pgsql

import (
	portsrepo "github.com/SscSPs/trustbridge_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		DealRepo:          newPgxDealRepository(dbPool),
		TransactionRepo:   newPgxTransactionRepository(dbPool),
		UserRepo:          newPgxUserRepository(dbPool),
		ChatRepo:          newPgxChatRepository(dbPool),
		CollaborationRepo: newPgxCollaborationRepository(dbPool),
		ReportingRepo:     newReportingRepository(dbPool),
	}
}
