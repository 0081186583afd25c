package repository

import "context"

// TransactionManager scopes a group of repository calls to one database
// transaction. The callback's context carries the transaction; any error
// rolls the whole group back.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
