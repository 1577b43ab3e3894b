// Package memory is the in-process marketplace backend. Commands run one
// at a time directly against the committed maps. Each command records the
// entries it overwrites in an undo log and its ledger effects in a
// journal; both are replayed backwards when the command fails.
package memory

import (
	"context"
	"errors"
	"sync"

	"rentflow/internal/ledger"
	"rentflow/internal/marketplace/service"
	"rentflow/pkg/domain"
	dErrors "rentflow/pkg/domain-errors"
)

type Store struct {
	mu     sync.Mutex
	state  *state
	ledger *ledger.Memory
}

func New(l *ledger.Memory) *Store {
	return &Store{state: newState(), ledger: l}
}

// RunInTx runs fn against the committed state. Writes made by fn are
// undone if it returns an error or panics.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, stores service.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	writes := &undoLog{}
	journal := ledger.NewJournal(s.ledger)
	defer func() {
		if r := recover(); r != nil {
			writes.Rollback()
			_ = journal.Rollback(context.WithoutCancel(ctx))
			panic(r)
		}
	}()
	if err := fn(ctx, s.state.stores(writes, journal)); err != nil {
		writes.Rollback()
		if rbErr := journal.Rollback(ctx); rbErr != nil {
			return errors.Join(err, dErrors.Wrap(rbErr, dErrors.CodeInternal, "ledger rollback failed"))
		}
		return err
	}
	writes.Commit()
	journal.Commit()
	return nil
}

// View runs fn against the committed state under the command lock.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, stores service.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, s.state.stores(nil, s.ledger))
}

// Deposit and Account go through the command lock so host ledger calls
// never interleave with a running command.
func (s *Store) Deposit(ctx context.Context, account domain.AccountID, amount domain.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Deposit(ctx, account, amount)
}

func (s *Store) Account(ctx context.Context, account domain.AccountID) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Account(ctx, account)
}

func (st *state) stores(log *undoLog, escrow ledger.Escrow) service.Stores {
	return service.Stores{
		Identities: identities{st, log},
		Counters:   counters{st, log},
		Properties: properties{st, log},
		Listings:   listings{st, log},
		Offers:     offers{st, log},
		Tenancies:  tenancies{st, log},
		Ledger:     escrow,
	}
}
