package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	DealRepo          DealRepositoryFacade
	TransactionRepo   TransactionRepositoryFacade
	UserRepo          UserRepositoryFacade
	ChatRepo          ChatRepositoryFacade
	CollaborationRepo CollaborationRepositoryFacade
	ReportingRepo     ReportingRepository
}
