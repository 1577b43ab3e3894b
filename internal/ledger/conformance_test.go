package ledger_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"rentflow/internal/ledger"
	"rentflow/pkg/domain"
)

const testExistentialDeposit domain.Amount = 10

// BackendSuite is run against every Ledger implementation.
type BackendSuite struct {
	suite.Suite
	newLedger func() ledger.Ledger
	ledger    ledger.Ledger
	alice     domain.AccountID
	bob       domain.AccountID
}

func (s *BackendSuite) SetupTest() {
	s.ledger = s.newLedger()
	s.alice = domain.AccountID(uuid.New())
	s.bob = domain.AccountID(uuid.New())
}

func (s *BackendSuite) fund(account domain.AccountID, amount domain.Amount) {
	s.Require().NoError(s.ledger.Deposit(context.Background(), account, amount))
}

func (s *BackendSuite) balance(account domain.AccountID) domain.Amount {
	got, err := s.ledger.Balance(context.Background(), account)
	s.Require().NoError(err)
	return got
}

func (s *BackendSuite) TestDeposit() {
	ctx := context.Background()

	s.Run("unknown account has zero balance", func() {
		s.Equal(domain.Amount(0), s.balance(domain.AccountID(uuid.New())))
	})

	s.Run("creates the account at or above the existential deposit", func() {
		s.fund(s.alice, 1000)
		s.Equal(domain.Amount(1000), s.balance(s.alice))
	})

	s.Run("rejects a new account below the existential deposit", func() {
		err := s.ledger.Deposit(ctx, s.bob, testExistentialDeposit-1)
		s.ErrorIs(err, ledger.ErrBelowMinimum)
		s.Equal(domain.Amount(0), s.balance(s.bob))
	})

	s.Run("rejects zero", func() {
		s.ErrorIs(s.ledger.Deposit(ctx, s.alice, 0), ledger.ErrInvalidAmount)
	})
}

func (s *BackendSuite) TestPlaceHold() {
	ctx := context.Background()
	s.fund(s.alice, 1000)

	s.Run("moves funds from free to held", func() {
		s.Require().NoError(s.ledger.PlaceHold(ctx, "offer:1", s.alice, 900))
		s.Equal(domain.Amount(100), s.balance(s.alice))

		view, err := s.ledger.Account(ctx, s.alice)
		s.Require().NoError(err)
		s.Equal(domain.Amount(900), view.Held)
		s.Equal(domain.Amount(900), view.Holds["offer:1"])
		s.Equal(domain.Amount(1000), view.Total())
	})

	s.Run("rejects a second hold under the same reason", func() {
		err := s.ledger.PlaceHold(ctx, "offer:1", s.alice, 10)
		s.ErrorIs(err, ledger.ErrHoldExists)
		s.Equal(domain.Amount(100), s.balance(s.alice))
	})

	s.Run("rejects more than the free balance", func() {
		err := s.ledger.PlaceHold(ctx, "offer:2", s.alice, 101)
		s.ErrorIs(err, ledger.ErrInsufficientBalance)
	})

	s.Run("may hold the entire free balance", func() {
		s.Require().NoError(s.ledger.PlaceHold(ctx, "offer:2", s.alice, 100))
		s.Equal(domain.Amount(0), s.balance(s.alice))

		view, err := s.ledger.Account(ctx, s.alice)
		s.Require().NoError(err)
		s.Equal(domain.Amount(1000), view.Held)
	})

	s.Run("rejects unknown accounts", func() {
		err := s.ledger.PlaceHold(ctx, "offer:3", s.bob, 1)
		s.ErrorIs(err, ledger.ErrInsufficientBalance)
	})
}

func (s *BackendSuite) TestReleaseHold() {
	ctx := context.Background()
	s.fund(s.alice, 1000)
	s.Require().NoError(s.ledger.PlaceHold(ctx, "offer:1", s.alice, 300))
	s.Require().NoError(s.ledger.PlaceHold(ctx, "offer:2", s.alice, 200))

	released, err := s.ledger.ReleaseHold(ctx, "offer:1", s.alice)
	s.Require().NoError(err)
	s.Equal(domain.Amount(300), released)
	s.Equal(domain.Amount(800), s.balance(s.alice))

	view, err := s.ledger.Account(ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(domain.Amount(200), view.Holds["offer:2"], "unrelated hold is untouched")

	_, err = s.ledger.ReleaseHold(ctx, "offer:1", s.alice)
	s.ErrorIs(err, ledger.ErrHoldNotFound)
	_, err = s.ledger.ReleaseHold(ctx, "offer:1", s.bob)
	s.ErrorIs(err, ledger.ErrHoldNotFound)
}

func (s *BackendSuite) TestTransfer() {
	ctx := context.Background()

	s.Run("preserve refuses to leave less than the existential deposit", func() {
		s.fund(s.alice, 100)
		err := s.ledger.Transfer(ctx, s.alice, s.bob, 95, ledger.Preserve)
		s.ErrorIs(err, ledger.ErrBelowMinimum)
		s.Equal(domain.Amount(100), s.balance(s.alice))
		s.Equal(domain.Amount(0), s.balance(s.bob))
	})

	s.Run("preserve moves funds that keep the sender alive", func() {
		s.Require().NoError(s.ledger.Transfer(ctx, s.alice, s.bob, 90, ledger.Preserve))
		s.Equal(domain.Amount(10), s.balance(s.alice))
		s.Equal(domain.Amount(90), s.balance(s.bob))
	})

	s.Run("expendable may drain the sender", func() {
		s.Require().NoError(s.ledger.Transfer(ctx, s.alice, s.bob, 10, ledger.Expendable))
		s.Equal(domain.Amount(0), s.balance(s.alice))
		s.Equal(domain.Amount(100), s.balance(s.bob))

		view, err := s.ledger.Account(ctx, s.alice)
		s.Require().NoError(err)
		s.Equal(domain.Amount(0), view.Total())
		s.Empty(view.Holds)
	})

	s.Run("credit below the existential deposit to a new account fails", func() {
		carol := domain.AccountID(uuid.New())
		err := s.ledger.Transfer(ctx, s.bob, carol, testExistentialDeposit-1, ledger.Expendable)
		s.ErrorIs(err, ledger.ErrBelowMinimum)
		s.Equal(domain.Amount(100), s.balance(s.bob))
	})

	s.Run("held funds cannot be transferred", func() {
		s.Require().NoError(s.ledger.PlaceHold(ctx, "offer:9", s.bob, 80))
		err := s.ledger.Transfer(ctx, s.bob, s.alice, 50, ledger.Expendable)
		s.ErrorIs(err, ledger.ErrInsufficientBalance)
	})

	s.Run("rejects zero", func() {
		s.ErrorIs(s.ledger.Transfer(ctx, s.bob, s.alice, 0, ledger.Expendable), ledger.ErrInvalidAmount)
	})
}
