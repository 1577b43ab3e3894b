package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentflow/internal/platform/postgres"
	"rentflow/pkg/domain"
)

// Postgres stores balances in ledger_accounts and holds in ledger_holds.
// Every method joins the transaction carried on ctx when there is one, so
// marketplace writes and ledger moves commit together.
type Postgres struct {
	pool               *pgxpool.Pool
	existentialDeposit domain.Amount
}

func NewPostgres(pool *pgxpool.Pool, existentialDeposit domain.Amount) *Postgres {
	return &Postgres{pool: pool, existentialDeposit: existentialDeposit}
}

func toDB(a domain.Amount) (int64, error) {
	if uint64(a) > math.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(a), nil
}

type pgAccount struct {
	exists bool
	free   domain.Amount
	held   domain.Amount
}

// lockAccount reads and row-locks an account, summing its holds.
func (p *Postgres) lockAccount(ctx context.Context, conn postgres.DBTX, account domain.AccountID) (pgAccount, error) {
	var free, held int64
	err := conn.QueryRow(ctx, `
		SELECT a.free, COALESCE((SELECT SUM(h.amount) FROM ledger_holds h WHERE h.account_id = a.account_id), 0)
		FROM ledger_accounts a
		WHERE a.account_id = $1
		FOR UPDATE`, uuid.UUID(account)).Scan(&free, &held)
	if errors.Is(err, pgx.ErrNoRows) {
		return pgAccount{}, nil
	}
	if err != nil {
		return pgAccount{}, fmt.Errorf("lock ledger account: %w", err)
	}
	return pgAccount{exists: true, free: domain.Amount(free), held: domain.Amount(held)}, nil
}

func (p *Postgres) setFree(ctx context.Context, conn postgres.DBTX, account domain.AccountID, free domain.Amount) error {
	v, err := toDB(free)
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx, `
		INSERT INTO ledger_accounts (account_id, free) VALUES ($1, $2)
		ON CONFLICT (account_id) DO UPDATE SET free = EXCLUDED.free`, uuid.UUID(account), v)
	if err != nil {
		return fmt.Errorf("write ledger account: %w", err)
	}
	return nil
}

func (p *Postgres) Balance(ctx context.Context, account domain.AccountID) (domain.Amount, error) {
	var free int64
	err := postgres.Conn(ctx, p.pool).QueryRow(ctx,
		`SELECT free FROM ledger_accounts WHERE account_id = $1`, uuid.UUID(account)).Scan(&free)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return domain.Amount(free), nil
}

func (p *Postgres) PlaceHold(ctx context.Context, reason string, account domain.AccountID, amount domain.Amount) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	v, err := toDB(amount)
	if err != nil {
		return err
	}
	return postgres.RunInTx(ctx, p.pool, 0, func(ctx context.Context) error {
		conn := postgres.Conn(ctx, p.pool)
		acct, err := p.lockAccount(ctx, conn, account)
		if err != nil {
			return err
		}
		if !acct.exists {
			return ErrInsufficientBalance
		}
		if err := checkDebit(acct.free, amount, p.existentialDeposit, Expendable); err != nil {
			return err
		}
		tag, err := conn.Exec(ctx, `
			INSERT INTO ledger_holds (account_id, reason, amount) VALUES ($1, $2, $3)
			ON CONFLICT (account_id, reason) DO NOTHING`, uuid.UUID(account), reason, v)
		if err != nil {
			return fmt.Errorf("insert hold: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrHoldExists
		}
		return p.setFree(ctx, conn, account, acct.free-amount)
	})
}

func (p *Postgres) ReleaseHold(ctx context.Context, reason string, account domain.AccountID) (domain.Amount, error) {
	var released domain.Amount
	err := postgres.RunInTx(ctx, p.pool, 0, func(ctx context.Context) error {
		conn := postgres.Conn(ctx, p.pool)
		acct, err := p.lockAccount(ctx, conn, account)
		if err != nil {
			return err
		}
		if !acct.exists {
			return ErrHoldNotFound
		}
		var amount int64
		err = conn.QueryRow(ctx, `
			DELETE FROM ledger_holds WHERE account_id = $1 AND reason = $2
			RETURNING amount`, uuid.UUID(account), reason).Scan(&amount)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrHoldNotFound
		}
		if err != nil {
			return fmt.Errorf("delete hold: %w", err)
		}
		released = domain.Amount(amount)
		return p.setFree(ctx, conn, account, acct.free+released)
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

func (p *Postgres) Transfer(ctx context.Context, from, to domain.AccountID, amount domain.Amount, policy Preservation) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return postgres.RunInTx(ctx, p.pool, 0, func(ctx context.Context) error {
		conn := postgres.Conn(ctx, p.pool)

		// Lock in a fixed order so concurrent opposite transfers cannot deadlock.
		first, second := from, to
		if uuid.UUID(to).String() < uuid.UUID(from).String() {
			first, second = to, from
		}
		accts := make(map[domain.AccountID]pgAccount, 2)
		for _, id := range []domain.AccountID{first, second} {
			if _, seen := accts[id]; seen {
				continue
			}
			a, err := p.lockAccount(ctx, conn, id)
			if err != nil {
				return err
			}
			accts[id] = a
		}

		src := accts[from]
		if !src.exists {
			return ErrInsufficientBalance
		}
		if err := checkDebit(src.free, amount, p.existentialDeposit, policy); err != nil {
			return err
		}
		if from == to {
			return nil
		}
		dst := accts[to]
		if err := checkCredit(dst.free+dst.held, amount, p.existentialDeposit); err != nil {
			return err
		}
		if _, err := toDB(dst.free + amount); err != nil {
			return err
		}

		if err := p.setFree(ctx, conn, to, dst.free+amount); err != nil {
			return err
		}
		remaining := src.free - amount
		if src.held == 0 && (remaining == 0 || remaining < p.existentialDeposit) {
			if _, err := conn.Exec(ctx, `DELETE FROM ledger_accounts WHERE account_id = $1`, uuid.UUID(from)); err != nil {
				return fmt.Errorf("reap account: %w", err)
			}
			return nil
		}
		return p.setFree(ctx, conn, from, remaining)
	})
}

func (p *Postgres) Deposit(ctx context.Context, account domain.AccountID, amount domain.Amount) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	return postgres.RunInTx(ctx, p.pool, 0, func(ctx context.Context) error {
		conn := postgres.Conn(ctx, p.pool)
		acct, err := p.lockAccount(ctx, conn, account)
		if err != nil {
			return err
		}
		if err := checkCredit(acct.free+acct.held, amount, p.existentialDeposit); err != nil {
			return err
		}
		return p.setFree(ctx, conn, account, acct.free+amount)
	})
}

func (p *Postgres) Account(ctx context.Context, account domain.AccountID) (Account, error) {
	conn := postgres.Conn(ctx, p.pool)
	view := Account{ID: account}

	free, err := p.Balance(ctx, account)
	if err != nil {
		return Account{}, err
	}
	view.Free = free

	rows, err := conn.Query(ctx,
		`SELECT reason, amount FROM ledger_holds WHERE account_id = $1 ORDER BY reason`, uuid.UUID(account))
	if err != nil {
		return Account{}, fmt.Errorf("query holds: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			reason string
			amount int64
		)
		if err := rows.Scan(&reason, &amount); err != nil {
			return Account{}, fmt.Errorf("scan hold: %w", err)
		}
		if view.Holds == nil {
			view.Holds = make(map[string]domain.Amount)
		}
		view.Holds[reason] = domain.Amount(amount)
		view.Held += domain.Amount(amount)
	}
	if err := rows.Err(); err != nil {
		return Account{}, fmt.Errorf("iterate holds: %w", err)
	}
	return view, nil
}
