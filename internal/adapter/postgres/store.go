package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements database.Store using PostgreSQL. Cart visibility is
// enforced by compiling access predicates into WHERE clauses, so a scoped
// caller's query can never return records outside its scope.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
