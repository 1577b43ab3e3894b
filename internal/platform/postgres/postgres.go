// Package postgres opens the pgx pool and carries the transaction helpers
// shared by every PostgreSQL-backed store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentflow/internal/platform/config"
	dErrors "rentflow/pkg/domain-errors"
	txcontext "rentflow/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Open creates a pool and verifies connectivity.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Conn returns the transaction stored in ctx, or the pool.
func Conn(ctx context.Context, pool *pgxpool.Pool) DBTX {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return pool
}

// RunInTx runs fn inside a transaction carried on ctx. When ctx already
// carries one, fn joins it and the outer caller owns commit.
func RunInTx(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, fn func(ctx context.Context) error) error {
	return runTx(ctx, pool, timeout, pgx.TxOptions{}, fn)
}

// RunInReadTx runs fn inside a read-only repeatable-read transaction, so
// every query fn makes sees the same snapshot.
func RunInReadTx(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, fn func(ctx context.Context) error) error {
	return runTx(ctx, pool, timeout, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, fn)
}

func runTx(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, opts pgx.TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "commit transaction")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit transaction")
	}
	return nil
}

// LockCommands takes a transaction-scoped advisory lock so commands that
// share key run one at a time across every process using the database.
func LockCommands(ctx context.Context, conn DBTX, key int64) error {
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "acquire command lock")
	}
	return nil
}

// IsUniqueViolation reports a 23505 error from PostgreSQL.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
