package session

import "context"

// Store is the persistence interface used by the HTTP layer and the
// advisor. It allows swapping in-memory, SQLite, and Postgres
// implementations.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Summary, error)
	Close() error
}
