package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Runner runs functions inside a transaction via WithTx. Domain services
// take it as a narrow interface so tests can substitute a pass-through.
type Runner struct {
	pool *pgxpool.Pool
}

// NewRunner creates a Runner on the given pool.
func NewRunner(pool *pgxpool.Pool) *Runner {
	return &Runner{pool: pool}
}

// RunInTx executes fn atomically.
func (r *Runner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTx(ctx, r.pool, fn)
}
