package ports

import "context"

// Notifier delivers the access-granted message to a client. loginName is the
// derived record id the client signs in with. Implementations are external;
// the directory core only ever logs a failure, it never propagates one to
// the caller of a record-mutating operation.
type Notifier interface {
	Notify(ctx context.Context, email, loginName string) error
}
