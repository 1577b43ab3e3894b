// Package postgres is the PostgreSQL marketplace backend. Each command
// runs in one transaction, serialized by an advisory lock, and the ledger
// joins the same transaction through the context.
package postgres

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentflow/internal/ledger"
	"rentflow/internal/marketplace/service"
	pg "rentflow/internal/platform/postgres"
	dErrors "rentflow/pkg/domain-errors"
)

// commandLockKey is the advisory lock every marketplace command holds.
const commandLockKey int64 = 0x72656e74666c6f77

var errOutOfRange = dErrors.New(dErrors.CodeValidation, "value exceeds storage range")

type Store struct {
	pool       *pgxpool.Pool
	ledger     ledger.Escrow
	identities service.IdentityStore
	txTimeout  time.Duration
}

type Option func(*Store)

// WithIdentityCache wraps identity lookups, typically with a cache.
func WithIdentityCache(wrap func(service.IdentityStore) service.IdentityStore) Option {
	return func(s *Store) {
		s.identities = wrap(s.identities)
	}
}

func WithTxTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.txTimeout = timeout
	}
}

// New builds the store. escrow must join transactions carried on ctx,
// as ledger.Postgres does.
func New(pool *pgxpool.Pool, escrow ledger.Escrow, opts ...Option) *Store {
	s := &Store{
		pool:       pool,
		ledger:     escrow,
		identities: &identities{pool: pool},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, stores service.Stores) error) error {
	return pg.RunInTx(ctx, s.pool, s.txTimeout, func(ctx context.Context) error {
		if err := pg.LockCommands(ctx, pg.Conn(ctx, s.pool), commandLockKey); err != nil {
			return err
		}
		return fn(ctx, s.stores())
	})
}

// View runs fn in a read-only transaction so multi-row reads share one
// snapshot. It takes no command lock.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, stores service.Stores) error) error {
	return pg.RunInReadTx(ctx, s.pool, s.txTimeout, func(ctx context.Context) error {
		return fn(ctx, s.stores())
	})
}

func (s *Store) stores() service.Stores {
	return service.Stores{
		Identities: s.identities,
		Counters:   &counters{pool: s.pool},
		Properties: &properties{pool: s.pool},
		Listings:   &listings{pool: s.pool},
		Offers:     &offers{pool: s.pool},
		Tenancies:  &tenancies{pool: s.pool},
		Ledger:     s.ledger,
	}
}

// toDB narrows an unsigned domain value to a BIGINT column.
func toDB[T ~uint64](v T) (int64, error) {
	if uint64(v) > math.MaxInt64 {
		return 0, errOutOfRange
	}
	return int64(v), nil
}

// toDBAll narrows several values, failing on the first out of range.
func toDBAll(values ...uint64) ([]int64, error) {
	out := make([]int64, len(values))
	for i, v := range values {
		n, err := toDB(v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
