//go:build integration

package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"rentflow/internal/ledger"
	"rentflow/internal/marketplace/models"
	"rentflow/internal/marketplace/service"
	"rentflow/internal/marketplace/store/postgres"
	"rentflow/internal/platform/clock"
	"rentflow/pkg/domain"
	"rentflow/pkg/platform/sentinel"
	"rentflow/pkg/testutil/containers"
)

var tables = []string{
	"verified_applicants", "verified_landlords", "tenancies", "applicant_offers", "listing_offers",
	"offers", "listings", "properties", "ledger_holds", "ledger_accounts",
}

type PostgresStoreSuite struct {
	suite.Suite
	ctx       context.Context
	pg        *containers.PostgresContainer
	ledger    *ledger.Postgres
	store     *postgres.Store
	svc       *service.Service
	authority domain.AccountID
	landlord  domain.AccountID
	alice     domain.AccountID
	bob       domain.AccountID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.GetManager().GetPostgres(s.T())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, tables...))
	_, err := s.pg.Pool.Exec(s.ctx, `UPDATE counters SET value = 0`)
	s.Require().NoError(err)

	s.authority = domain.AccountID(uuid.New())
	s.landlord = domain.AccountID(uuid.New())
	s.alice = domain.AccountID(uuid.New())
	s.bob = domain.AccountID(uuid.New())

	s.ledger = ledger.NewPostgres(s.pg.Pool, 1)
	s.store = postgres.New(s.pg.Pool, s.ledger)
	svc, err := service.New(s.store, clock.NewManual(0), service.NewStaticAuthority(s.authority),
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		service.WithFunds(s.ledger),
		service.WithLimits(models.Limits{MaxTenantsPerOffer: 10, MaxOffersPerListing: 2, MaxOffersPerApplicant: 20}),
	)
	s.Require().NoError(err)
	s.svc = svc
}

func (s *PostgresStoreSuite) listing() *models.Listing {
	property, err := s.svc.RegisterProperty(s.ctx, s.authority, service.RegisterPropertyCommand{
		AddressHash:    domain.HashOf("1 High Street"),
		PostalCodeHash: domain.HashOf("AB1 2CD"),
		Landlord:       s.landlord,
	})
	s.Require().NoError(err)
	listing, err := s.svc.CreateListing(s.ctx, s.landlord, service.CreateListingCommand{
		PropertyID: property.ID, Price: 1000, AvailableFrom: 50,
	})
	s.Require().NoError(err)
	return listing
}

func (s *PostgresStoreSuite) submit(listing domain.ListingID, price domain.Amount, tenants ...domain.AccountID) (*models.Offer, error) {
	return s.svc.SubmitOffer(s.ctx, s.alice, service.SubmitOfferCommand{
		ListingID: listing, Price: price, StartDate: 51, EndDate: 101, TenantIDs: tenants, ValidUntil: 100,
	})
}

func (s *PostgresStoreSuite) TestOfferLifecycle() {
	s.Require().NoError(s.svc.RegisterApplicant(s.ctx, s.authority, s.alice))
	s.Require().NoError(s.svc.RegisterApplicant(s.ctx, s.authority, s.bob))
	s.Require().NoError(s.svc.Deposit(s.ctx, s.authority, s.alice, 1000))
	listing := s.listing()

	offer, err := s.submit(listing.ID, 900, s.alice, s.bob)
	s.Require().NoError(err)
	s.False(offer.AllSigned)

	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.ErrorIs(err, models.ErrOfferNotFullySigned)

	signed, err := s.svc.SignOffer(s.ctx, s.bob, offer.ID)
	s.Require().NoError(err)
	s.True(signed.AllSigned)

	stored, err := s.svc.GetOffer(s.ctx, offer.ID)
	s.Require().NoError(err)
	s.Equal(signed, stored)

	result, err := s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.Require().NoError(err)
	s.Equal([]domain.AccountID{s.alice, s.bob}, result.Tenancy.TenantIDs)

	tenant, err := s.ledger.Account(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(domain.Amount(100), tenant.Free)
	s.Zero(tenant.Held)
	landlord, err := s.ledger.Account(s.ctx, s.landlord)
	s.Require().NoError(err)
	s.Equal(domain.Amount(900), landlord.Free)

	tenancy, err := s.svc.GetTenancy(s.ctx, listing.PropertyID)
	s.Require().NoError(err)
	s.Equal(result.Tenancy, tenancy)
}

func (s *PostgresStoreSuite) TestFailedCommandRollsBackEverything() {
	s.Require().NoError(s.svc.RegisterApplicant(s.ctx, s.authority, s.alice))
	s.Require().NoError(s.svc.Deposit(s.ctx, s.authority, s.alice, 1000))
	listing := s.listing()

	for range 2 {
		_, err := s.submit(listing.ID, 10, s.alice)
		s.Require().NoError(err)
	}
	_, err := s.submit(listing.ID, 10, s.alice)
	s.ErrorIs(err, models.ErrTooManyOffersOnListing)

	account, err := s.ledger.Account(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(domain.Amount(20), account.Held)

	mine, err := s.svc.ListApplicantOffers(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Len(mine, 2)

	s.Require().NoError(s.store.View(s.ctx, func(ctx context.Context, stores service.Stores) error {
		current, err := stores.Counters.Current(ctx, models.CounterOffer)
		s.Require().NoError(err)
		s.Equal(uint64(2), current)
		_, err = stores.Offers.FindByID(ctx, 3)
		s.ErrorIs(err, sentinel.ErrNotFound)
		return nil
	}))
}

func (s *PostgresStoreSuite) TestAcceptBelowMinimumRollsBack() {
	s.Require().NoError(s.svc.RegisterApplicant(s.ctx, s.authority, s.alice))
	s.Require().NoError(s.svc.Deposit(s.ctx, s.authority, s.alice, 1000))
	listing := s.listing()

	offer, err := s.submit(listing.ID, 1000, s.alice)
	s.Require().NoError(err)
	tenant, err := s.ledger.Account(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Zero(tenant.Free)
	s.Equal(domain.Amount(1000), tenant.Held)

	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.ErrorIs(err, models.ErrInsufficientFundsForOffer)

	stored, err := s.svc.GetOffer(s.ctx, offer.ID)
	s.Require().NoError(err)
	s.Equal(models.OfferPending, stored.Status)
	tenant, err = s.ledger.Account(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Equal(domain.Amount(1000), tenant.Held)
	_, err = s.svc.GetTenancy(s.ctx, listing.PropertyID)
	s.ErrorIs(err, models.ErrTenancyDoesNotExist)
}

func (s *PostgresStoreSuite) TestViewReadsOneSnapshot() {
	listing := s.listing()

	err := s.store.View(s.ctx, func(ctx context.Context, stores service.Stores) error {
		before, err := stores.Listings.OfferIDs(ctx, listing.ID)
		s.Require().NoError(err)
		s.Empty(before)

		_, err = s.pg.Pool.Exec(s.ctx,
			`INSERT INTO listing_offers (listing_id, position, offer_id) VALUES ($1, 0, 7)`, int64(listing.ID))
		s.Require().NoError(err)

		after, err := stores.Listings.OfferIDs(ctx, listing.ID)
		s.Require().NoError(err)
		s.Empty(after)

		return stores.Identities.AddApplicant(ctx, s.alice)
	})
	s.Error(err, "view must not accept writes")

	s.Require().NoError(s.store.View(s.ctx, func(ctx context.Context, stores service.Stores) error {
		ids, err := stores.Listings.OfferIDs(ctx, listing.ID)
		s.Require().NoError(err)
		s.Equal([]domain.OfferID{7}, ids)
		ok, err := stores.Identities.IsApplicant(ctx, s.alice)
		s.Require().NoError(err)
		s.False(ok)
		return nil
	}))
}

func (s *PostgresStoreSuite) TestIdentitiesAndKeyedInserts() {
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, stores service.Stores) error {
		s.Require().NoError(stores.Identities.AddLandlord(ctx, s.landlord))
		s.Require().NoError(stores.Identities.AddLandlord(ctx, s.landlord))
		ok, err := stores.Identities.IsLandlord(ctx, s.landlord)
		s.Require().NoError(err)
		s.True(ok)
		ok, err = stores.Identities.IsApplicant(ctx, s.landlord)
		s.Require().NoError(err)
		s.False(ok)

		property := models.NewProperty(1, s.landlord, domain.HashOf("a"), domain.HashOf("b"))
		s.Require().NoError(stores.Properties.Insert(ctx, property))
		s.ErrorIs(stores.Properties.Insert(ctx, property), sentinel.ErrAlreadyExists)
		return nil
	})
	s.Error(err, "commit of an aborted transaction fails")

	err = s.store.View(s.ctx, func(ctx context.Context, stores service.Stores) error {
		_, err := stores.Properties.FindByID(ctx, 1)
		return err
	})
	s.ErrorIs(err, sentinel.ErrNotFound, "unique violation aborted the transaction")
}
