package ledger

import (
	"context"
	"errors"
	"fmt"

	"rentflow/pkg/domain"
)

// Journal records the inverse of every successful escrow call so a failed
// command can undo its ledger effects. Not safe for concurrent use; one
// journal belongs to one command.
type Journal struct {
	inner Escrow
	undo  []func(ctx context.Context) error
}

func NewJournal(inner Escrow) *Journal {
	return &Journal{inner: inner}
}

func (j *Journal) Balance(ctx context.Context, account domain.AccountID) (domain.Amount, error) {
	return j.inner.Balance(ctx, account)
}

func (j *Journal) PlaceHold(ctx context.Context, reason string, account domain.AccountID, amount domain.Amount) error {
	if err := j.inner.PlaceHold(ctx, reason, account, amount); err != nil {
		return err
	}
	j.undo = append(j.undo, func(ctx context.Context) error {
		_, err := j.inner.ReleaseHold(ctx, reason, account)
		return err
	})
	return nil
}

func (j *Journal) ReleaseHold(ctx context.Context, reason string, account domain.AccountID) (domain.Amount, error) {
	amount, err := j.inner.ReleaseHold(ctx, reason, account)
	if err != nil {
		return 0, err
	}
	j.undo = append(j.undo, func(ctx context.Context) error {
		return j.inner.PlaceHold(ctx, reason, account, amount)
	})
	return amount, nil
}

func (j *Journal) Transfer(ctx context.Context, from, to domain.AccountID, amount domain.Amount, policy Preservation) error {
	if err := j.inner.Transfer(ctx, from, to, amount, policy); err != nil {
		return err
	}
	j.undo = append(j.undo, func(ctx context.Context) error {
		return j.inner.Transfer(ctx, to, from, amount, Expendable)
	})
	return nil
}

// Len reports the number of recorded entries.
func (j *Journal) Len() int { return len(j.undo) }

// Rollback applies the inverses newest first. Every inverse is attempted
// even if an earlier one fails.
func (j *Journal) Rollback(ctx context.Context) error {
	var errs []error
	for i := len(j.undo) - 1; i >= 0; i-- {
		if err := j.undo[i](ctx); err != nil {
			errs = append(errs, fmt.Errorf("undo step %d: %w", i, err))
		}
	}
	j.undo = nil
	return errors.Join(errs...)
}

// Commit forgets the recorded inverses.
func (j *Journal) Commit() {
	j.undo = nil
}
