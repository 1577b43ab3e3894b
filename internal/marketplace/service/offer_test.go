package service_test

import (
	"github.com/prometheus/client_golang/prometheus/testutil"

	"rentflow/internal/marketplace/models"
	"rentflow/internal/marketplace/service"
	"rentflow/pkg/domain"
)

func (s *ServiceSuite) TestSoloOfferAccepted() {
	s.verify(s.alice)
	s.fund(s.alice, 1000)
	listing := s.listing()

	offer, err := s.submit(s.alice, listing.ID, 900, s.alice)
	s.Require().NoError(err)
	s.Equal(domain.OfferID(1), offer.ID)
	s.True(offer.AllSigned)
	s.Equal(models.OfferPending, offer.Status)
	s.Equal(domain.Amount(900), s.account(s.alice).Holds[offer.HoldReason()])
	s.Equal(domain.Amount(100), s.account(s.alice).Free)

	result, err := s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.Require().NoError(err)
	s.Equal(models.OfferAccepted, result.Offer.Status)
	s.Equal(&models.Tenancy{
		PropertyID: listing.PropertyID,
		Price:      900,
		StartDate:  51,
		EndDate:    101,
		TenantIDs:  []domain.AccountID{s.alice},
	}, result.Tenancy)

	tenant := s.account(s.alice)
	s.Zero(tenant.Held)
	s.Equal(domain.Amount(100), tenant.Free)
	s.Equal(domain.Amount(900), s.account(s.landlord).Free)

	tenancy, err := s.svc.GetTenancy(s.ctx, listing.PropertyID)
	s.Require().NoError(err)
	s.Equal(result.Tenancy, tenancy)

	stored, err := s.svc.GetOffer(s.ctx, offer.ID)
	s.Require().NoError(err)
	s.Equal(models.OfferAccepted, stored.Status)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.OffersSubmitted))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.OffersAccepted))
	s.Equal(900.0, testutil.ToFloat64(s.metrics.FundsTransferred))
}

func (s *ServiceSuite) TestCoSignedOfferAccepted() {
	s.verify(s.alice, s.bob)
	s.fund(s.alice, 1000)
	listing := s.listing()

	offer, err := s.submit(s.alice, listing.ID, 900, s.alice, s.bob)
	s.Require().NoError(err)
	s.False(offer.AllSigned)

	signed, err := s.svc.SignOffer(s.ctx, s.bob, offer.ID)
	s.Require().NoError(err)
	s.True(signed.AllSigned)
	s.Equal([]models.CoSignature{{TenantID: s.alice, Signed: true}, {TenantID: s.bob, Signed: true}}, signed.CoSignatures)

	result, err := s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.Require().NoError(err)
	s.Equal([]domain.AccountID{s.alice, s.bob}, result.Tenancy.TenantIDs)
	s.Equal(domain.Amount(900), s.account(s.landlord).Free)
}

func (s *ServiceSuite) TestAcceptBeforeAllSigned() {
	s.verify(s.alice, s.bob)
	s.fund(s.alice, 1000)
	listing := s.listing()
	offer, err := s.submit(s.alice, listing.ID, 900, s.alice, s.bob)
	s.Require().NoError(err)
	before := s.account(s.alice)

	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.ErrorIs(err, models.ErrOfferNotFullySigned)

	s.Equal(before, s.account(s.alice))
	s.Zero(s.account(s.landlord).Free)
	stored, err := s.svc.GetOffer(s.ctx, offer.ID)
	s.Require().NoError(err)
	s.Equal(models.OfferPending, stored.Status)
	_, err = s.svc.GetTenancy(s.ctx, listing.PropertyID)
	s.ErrorIs(err, models.ErrTenancyDoesNotExist)
}

func (s *ServiceSuite) TestAcceptIsNotIdempotent() {
	s.verify(s.alice)
	s.fund(s.alice, 1000)
	offer, err := s.submit(s.alice, s.listing().ID, 900, s.alice)
	s.Require().NoError(err)
	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.Require().NoError(err)
	tenant, landlord := s.account(s.alice), s.account(s.landlord)

	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.ErrorIs(err, models.ErrOfferCannotBeAccepted)
	s.Equal(tenant, s.account(s.alice))
	s.Equal(landlord, s.account(s.landlord))

	_, err = s.svc.SignOffer(s.ctx, s.alice, offer.ID)
	s.ErrorIs(err, models.ErrOfferCannotBeAccepted)
}

func (s *ServiceSuite) TestExpiredOffer() {
	s.verify(s.alice, s.bob)
	s.fund(s.alice, 1000)
	offer, err := s.submit(s.alice, s.listing().ID, 900, s.alice, s.bob)
	s.Require().NoError(err)

	now, err := s.svc.AdvanceClock(s.ctx, s.authority, 101)
	s.Require().NoError(err)
	s.Equal(domain.Tick(101), now)

	_, err = s.svc.SignOffer(s.ctx, s.bob, offer.ID)
	s.ErrorIs(err, models.ErrOfferExpired)
	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.ErrorIs(err, models.ErrOfferExpired)
}

func (s *ServiceSuite) TestAcceptAfterLeaseStarted() {
	s.verify(s.alice)
	s.fund(s.alice, 1000)
	offer, err := s.submit(s.alice, s.listing().ID, 900, s.alice)
	s.Require().NoError(err)

	_, err = s.svc.AdvanceClock(s.ctx, s.authority, 51)
	s.Require().NoError(err)
	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.ErrorIs(err, models.ErrInvalidOfferStartDate)
}

func (s *ServiceSuite) TestListingOfferCapacity() {
	s.newService(models.Limits{MaxTenantsPerOffer: 10, MaxOffersPerListing: 2, MaxOffersPerApplicant: 20})
	s.verify(s.alice)
	s.fund(s.alice, 1000)
	full, other := s.listing(), s.listing()

	for range 2 {
		_, err := s.submit(s.alice, full.ID, 10, s.alice)
		s.Require().NoError(err)
	}
	before := s.account(s.alice)

	_, err := s.submit(s.alice, full.ID, 10, s.alice)
	s.ErrorIs(err, models.ErrTooManyOffersOnListing)

	s.Equal(before, s.account(s.alice))
	_, err = s.svc.GetOffer(s.ctx, 3)
	s.ErrorIs(err, models.ErrOfferDoesNotExist)
	mine, err := s.svc.ListApplicantOffers(s.ctx, s.alice)
	s.Require().NoError(err)
	s.Len(mine, 2)

	next, err := s.submit(s.alice, other.ID, 10, s.alice)
	s.Require().NoError(err)
	s.Equal(domain.OfferID(3), next.ID)
}

func (s *ServiceSuite) TestApplicantOfferCapacity() {
	s.newService(models.Limits{MaxTenantsPerOffer: 10, MaxOffersPerListing: 20, MaxOffersPerApplicant: 1})
	s.verify(s.alice)
	s.fund(s.alice, 1000)
	listing := s.listing()

	_, err := s.submit(s.alice, listing.ID, 10, s.alice)
	s.Require().NoError(err)
	_, err = s.submit(s.alice, listing.ID, 10, s.alice)
	s.ErrorIs(err, models.ErrMaxOffersForApplicantReached)

	ids, err := s.svc.ListListingOffers(s.ctx, listing.ID)
	s.Require().NoError(err)
	s.Len(ids, 1, "listing index rolled back with the failed command")
}

func (s *ServiceSuite) TestCompetingOffersAreIndependent() {
	s.verify(s.alice, s.bob)
	s.fund(s.alice, 1000)
	s.fund(s.bob, 1000)
	listing := s.listing()

	first, err := s.submit(s.alice, listing.ID, 900, s.alice)
	s.Require().NoError(err)
	second, err := s.submit(s.bob, listing.ID, 800, s.bob)
	s.Require().NoError(err)

	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, first.ID)
	s.Require().NoError(err)

	other, err := s.svc.GetOffer(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Equal(models.OfferPending, other.Status)
	s.Equal(domain.Amount(800), s.account(s.bob).Holds[second.HoldReason()])

	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, second.ID)
	s.ErrorIs(err, models.ErrTenancyAlreadyExists)
	s.Equal(domain.Amount(800), s.account(s.bob).Held)
	s.Equal(domain.Amount(900), s.account(s.landlord).Free)

	offers, err := s.svc.ListListingOffers(s.ctx, listing.ID)
	s.Require().NoError(err)
	s.Require().Len(offers, 2)
	s.Equal(first.ID, offers[0].ID)
	s.Equal(second.ID, offers[1].ID)
}

func (s *ServiceSuite) TestSubmitOfferGuards() {
	stranger := newAccount()
	s.verify(s.alice, s.bob)
	s.fund(s.alice, 1000)
	listing := s.listing()

	cmd := func(mutate func(*service.SubmitOfferCommand)) service.SubmitOfferCommand {
		c := service.SubmitOfferCommand{
			ListingID:  listing.ID,
			Price:      900,
			StartDate:  51,
			EndDate:    101,
			TenantIDs:  []domain.AccountID{s.alice},
			ValidUntil: 100,
		}
		mutate(&c)
		return c
	}

	cases := []struct {
		name   string
		caller domain.AccountID
		mutate func(*service.SubmitOfferCommand)
		want   error
	}{
		{"unverified caller", stranger, func(*service.SubmitOfferCommand) {}, models.ErrUnauthorized},
		{"unknown listing", s.alice, func(c *service.SubmitOfferCommand) { c.ListingID = 99 }, models.ErrListingDoesNotExist},
		{"price above balance", s.alice, func(c *service.SubmitOfferCommand) { c.Price = 1001 }, models.ErrInsufficientFundsForOffer},
		{"funds checked before tenants", s.alice, func(c *service.SubmitOfferCommand) {
			c.Price = 1001
			c.TenantIDs = []domain.AccountID{stranger}
		}, models.ErrInsufficientFundsForOffer},
		{"valid until not in future", s.alice, func(c *service.SubmitOfferCommand) { c.ValidUntil = 0 }, models.ErrOfferValidUntilMustBeFuture},
		{"start before availability", s.alice, func(c *service.SubmitOfferCommand) { c.StartDate = 49 }, models.ErrInvalidOfferStartDate},
		{"start not before end", s.alice, func(c *service.SubmitOfferCommand) { c.EndDate = 51 }, models.ErrInvalidOfferStartDate},
		{"empty tenants", s.alice, func(c *service.SubmitOfferCommand) { c.TenantIDs = nil }, models.ErrTenantIDsCannotBeEmpty},
		{"too many tenants", s.alice, func(c *service.SubmitOfferCommand) {
			c.TenantIDs = make([]domain.AccountID, 11)
		}, models.ErrTooManyTenants},
		{"unverified tenant", s.alice, func(c *service.SubmitOfferCommand) {
			c.TenantIDs = []domain.AccountID{s.alice, stranger}
		}, models.ErrAllApplicantsMustBeVerified},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.svc.SubmitOffer(s.ctx, tc.caller, cmd(tc.mutate))
			s.ErrorIs(err, tc.want)
		})
	}

	account := s.account(s.alice)
	s.Equal(domain.Amount(1000), account.Free)
	s.Zero(account.Held)
	offer, err := s.submit(s.alice, listing.ID, 900, s.alice)
	s.Require().NoError(err)
	s.Equal(domain.OfferID(1), offer.ID)
}

func (s *ServiceSuite) TestSignOffer() {
	carol := newAccount()
	s.verify(s.alice, s.bob, carol)
	s.fund(s.alice, 1000)
	offer, err := s.submit(s.alice, s.listing().ID, 900, s.alice, s.bob)
	s.Require().NoError(err)

	s.Run("unverified caller", func() {
		_, err := s.svc.SignOffer(s.ctx, newAccount(), offer.ID)
		s.ErrorIs(err, models.ErrUnauthorized)
	})

	s.Run("unknown offer", func() {
		_, err := s.svc.SignOffer(s.ctx, s.bob, 42)
		s.ErrorIs(err, models.ErrOfferDoesNotExist)
	})

	s.Run("non-listed applicant is a no-op", func() {
		got, err := s.svc.SignOffer(s.ctx, carol, offer.ID)
		s.Require().NoError(err)
		s.False(got.AllSigned)

		stored, err := s.svc.GetOffer(s.ctx, offer.ID)
		s.Require().NoError(err)
		s.Equal(offer.CoSignatures, stored.CoSignatures)
	})

	s.Run("listed tenant signs", func() {
		got, err := s.svc.SignOffer(s.ctx, s.bob, offer.ID)
		s.Require().NoError(err)
		s.True(got.AllSigned)
	})
}

func (s *ServiceSuite) TestAcceptOfferGuards() {
	s.verify(s.alice)
	s.fund(s.alice, 1000)
	offer, err := s.submit(s.alice, s.listing().ID, 900, s.alice)
	s.Require().NoError(err)

	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, 42)
	s.ErrorIs(err, models.ErrOfferDoesNotExist)

	_, err = s.svc.AcceptOffer(s.ctx, s.alice, offer.ID)
	s.ErrorIs(err, models.ErrUnauthorized)
	s.Equal(domain.Amount(900), s.account(s.alice).Held)
}

func (s *ServiceSuite) TestHoldCoversWholeBalance() {
	s.verify(s.alice)
	s.fund(s.alice, 1000)
	listing := s.listing()

	offer, err := s.submit(s.alice, listing.ID, 1000, s.alice)
	s.Require().NoError(err)
	account := s.account(s.alice)
	s.Zero(account.Free)
	s.Equal(domain.Amount(1000), account.Held)

	_, err = s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.ErrorIs(err, models.ErrInsufficientFundsForOffer)

	stored, err := s.svc.GetOffer(s.ctx, offer.ID)
	s.Require().NoError(err)
	s.Equal(models.OfferPending, stored.Status)
	account = s.account(s.alice)
	s.Zero(account.Free)
	s.Equal(domain.Amount(1000), account.Held)
	s.Zero(s.account(s.landlord).Free)
	_, err = s.svc.GetTenancy(s.ctx, listing.PropertyID)
	s.ErrorIs(err, models.ErrTenancyDoesNotExist)
}

func (s *ServiceSuite) TestZeroPriceOffer() {
	s.verify(s.alice)
	listing := s.listing()

	offer, err := s.submit(s.alice, listing.ID, 0, s.alice)
	s.Require().NoError(err)
	s.Zero(s.account(s.alice).Held)

	result, err := s.svc.AcceptOffer(s.ctx, s.landlord, offer.ID)
	s.Require().NoError(err)
	s.Equal(domain.Amount(0), result.Tenancy.Price)
	s.Zero(s.account(s.landlord).Free)
}
