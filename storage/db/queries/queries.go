package queries

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries bundles every raw SQL statement the application runs against
// Postgres. All methods are safe for concurrent use; the pool handles
// connection management.
type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}
