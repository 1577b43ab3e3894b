package service

import (
	"context"
	"errors"
	"strconv"

	"rentflow/internal/ledger"
	"rentflow/pkg/domain"
	dErrors "rentflow/pkg/domain-errors"
	audit "rentflow/pkg/platform/audit"
)

var (
	errFundsDisabled   = dErrors.New(dErrors.CodeInvalidState, "ledger host operations are disabled")
	errClockNotManual  = dErrors.New(dErrors.CodeInvalidState, "clock is not manually controlled")
	errDepositTooSmall = dErrors.New(dErrors.CodeValidation, "deposit would leave the account below the existential deposit")
	errDepositOverflow = dErrors.New(dErrors.CodeValidation, "deposit would overflow the account")
	errDepositZero     = dErrors.New(dErrors.CodeValidation, "deposit amount must be positive")
)

// Deposit mints amount into account. Privileged callers only.
func (s *Service) Deposit(ctx context.Context, caller, account domain.AccountID, amount domain.Amount) error {
	err := s.instrument(ctx, "deposit", func(ctx context.Context) error {
		if err := s.requirePrivileged(ctx, caller); err != nil {
			return err
		}
		if s.funds == nil {
			return errFundsDisabled
		}
		err := s.funds.Deposit(ctx, account, amount)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ledger.ErrBelowMinimum):
			return errDepositTooSmall
		case errors.Is(err, ledger.ErrOverflow):
			return errDepositOverflow
		case errors.Is(err, ledger.ErrInvalidAmount):
			return errDepositZero
		default:
			return wrapStore(err, "failed to deposit")
		}
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventLedgerDeposit,
		"actor_id", caller.String(),
		"subject", account.String(),
		"amount", strconv.FormatUint(uint64(amount), 10),
	)
	return nil
}

// Account returns the ledger view of account.
func (s *Service) Account(ctx context.Context, account domain.AccountID) (ledger.Account, error) {
	if s.funds == nil {
		return ledger.Account{}, errFundsDisabled
	}
	view, err := s.funds.Account(ctx, account)
	if err != nil {
		return ledger.Account{}, wrapStore(err, "failed to load account")
	}
	return view, nil
}

// AdvanceClock moves a manual clock forward. Privileged callers only.
func (s *Service) AdvanceClock(ctx context.Context, caller domain.AccountID, ticks uint64) (domain.Tick, error) {
	var now domain.Tick
	err := s.instrument(ctx, "advance_clock", func(ctx context.Context) error {
		if err := s.requirePrivileged(ctx, caller); err != nil {
			return err
		}
		if s.clockControl == nil {
			return errClockNotManual
		}
		var err error
		now, err = s.clockControl.Advance(ticks)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logAudit(ctx, audit.EventClockAdvanced,
		"actor_id", caller.String(),
		"subject", "clock",
		"now", strconv.FormatUint(uint64(now), 10),
	)
	return now, nil
}
