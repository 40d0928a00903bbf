package unitofwork

import "context"

// RepositoryFactory creates short-lived units of work, one per request.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
