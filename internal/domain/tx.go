package domain

import "context"

// TransactionManager runs fn inside a single atomic transaction against
// the shared store. Repositories called with the ctx passed to fn
// participate in that transaction; an error from fn rolls everything back.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
