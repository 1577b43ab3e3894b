// Package ledger is the fungible-asset ledger the marketplace escrows
// against: free balances, reason-tagged holds and transfers with an
// existence policy.
//
// An account exists while its total (free + held) is at least the
// existential deposit. Holds and transfers never leave less than the
// existential deposit free when the policy is Preserve.
package ledger

import (
	"context"
	"errors"

	"rentflow/pkg/domain"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowMinimum        = errors.New("would fall below existential deposit")
	ErrHoldNotFound        = errors.New("hold not found")
	ErrHoldExists          = errors.New("hold already exists")
	ErrOverflow            = errors.New("balance overflow")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Preservation selects whether a debit may reap the sender's account.
type Preservation int

const (
	// Expendable allows the sender's free balance to drop to zero.
	Expendable Preservation = iota
	// Preserve fails rather than leave less than the existential deposit free.
	Preserve
)

func (p Preservation) String() string {
	if p == Preserve {
		return "preserve"
	}
	return "expendable"
}

// Account is a read-only view of one account.
type Account struct {
	ID    domain.AccountID         `json:"account_id"`
	Free  domain.Amount            `json:"free"`
	Held  domain.Amount            `json:"held"`
	Holds map[string]domain.Amount `json:"holds,omitempty"`
}

func (a Account) Total() domain.Amount { return a.Free + a.Held }

// Escrow is the reason-tagged surface used inside marketplace commands.
type Escrow interface {
	// Balance returns the free (unheld) balance.
	Balance(ctx context.Context, account domain.AccountID) (domain.Amount, error)
	// PlaceHold may cover the whole free balance; the existential deposit is
	// only enforced by Transfer under Preserve.
	PlaceHold(ctx context.Context, reason string, account domain.AccountID, amount domain.Amount) error
	// ReleaseHold returns the held amount to free and reports how much moved.
	ReleaseHold(ctx context.Context, reason string, account domain.AccountID) (domain.Amount, error)
	Transfer(ctx context.Context, from, to domain.AccountID, amount domain.Amount, policy Preservation) error
}

// Ledger is the full surface both backends implement.
type Ledger interface {
	Escrow
	Deposit(ctx context.Context, account domain.AccountID, amount domain.Amount) error
	Account(ctx context.Context, account domain.AccountID) (Account, error)
}

// checkDebit validates taking amount out of free under policy.
func checkDebit(free, amount, existentialDeposit domain.Amount, policy Preservation) error {
	if amount > free {
		return ErrInsufficientBalance
	}
	if policy == Preserve && free-amount < existentialDeposit {
		return ErrBelowMinimum
	}
	return nil
}

// checkCredit validates adding amount to an account whose total is total.
func checkCredit(total, amount, existentialDeposit domain.Amount) error {
	if total+amount < total {
		return ErrOverflow
	}
	if total+amount < existentialDeposit {
		return ErrBelowMinimum
	}
	return nil
}
