package service

import (
	"context"
	"errors"

	"rentflow/internal/ledger"
	"rentflow/internal/marketplace/models"
	"rentflow/pkg/domain"
	audit "rentflow/pkg/platform/audit"
	"rentflow/pkg/platform/sentinel"
)

type SubmitOfferCommand struct {
	ListingID  domain.ListingID
	Price      domain.Amount
	StartDate  domain.Tick
	EndDate    domain.Tick
	TenantIDs  []domain.AccountID
	ValidUntil domain.Tick
}

// AcceptResult is what a successful acceptance produced.
type AcceptResult struct {
	Offer   *models.Offer   `json:"offer"`
	Tenancy *models.Tenancy `json:"tenancy"`
}

// SubmitOffer places a pending offer on a listing and holds the offer
// price against the caller's account.
//
// Guards, in order: caller is a verified applicant, listing exists, free
// balance covers the price, valid-until is in the future, dates are
// consistent, tenant list is non-empty and within limits, every tenant is
// a verified applicant, the offer counter has room.
func (s *Service) SubmitOffer(ctx context.Context, caller domain.AccountID, cmd SubmitOfferCommand) (*models.Offer, error) {
	var offer *models.Offer
	err := s.command(ctx, "submit_offer", func(ctx context.Context, now domain.Tick, stores Stores) error {
		if err := requireApplicant(ctx, stores, caller); err != nil {
			return err
		}
		listing, err := findListing(ctx, stores, cmd.ListingID)
		if err != nil {
			return err
		}
		balance, err := stores.Ledger.Balance(ctx, caller)
		if err != nil {
			return wrapStore(err, "failed to read balance")
		}
		if balance < cmd.Price {
			return models.ErrInsufficientFundsForOffer
		}
		if err := models.CheckValidUntil(now, cmd.ValidUntil); err != nil {
			return err
		}
		if err := models.CheckOfferDates(now, listing.AvailableFrom, cmd.StartDate, cmd.EndDate); err != nil {
			return err
		}
		if len(cmd.TenantIDs) == 0 {
			return models.ErrTenantIDsCannotBeEmpty
		}
		if len(cmd.TenantIDs) > s.limits.MaxTenantsPerOffer {
			return models.ErrTooManyTenants
		}
		for _, tenant := range cmd.TenantIDs {
			ok, err := stores.Identities.IsApplicant(ctx, tenant)
			if err != nil {
				return wrapStore(err, "failed to check tenant")
			}
			if !ok {
				return models.ErrAllApplicantsMustBeVerified
			}
		}
		next, err := allocate(ctx, stores, models.CounterOffer, models.ErrTooManyOffers)
		if err != nil {
			return err
		}

		offer, err = models.NewOffer(domain.OfferID(next), listing, caller, models.OfferTerms{
			Price:      cmd.Price,
			StartDate:  cmd.StartDate,
			EndDate:    cmd.EndDate,
			TenantIDs:  cmd.TenantIDs,
			ValidUntil: cmd.ValidUntil,
		})
		if err != nil {
			return err
		}
		err = stores.Listings.AppendOffer(ctx, listing.ID, offer.ID, s.limits.MaxOffersPerListing)
		if errors.Is(err, sentinel.ErrCapacityReached) {
			return models.ErrTooManyOffersOnListing
		}
		if err != nil {
			return wrapStore(err, "failed to index offer on listing")
		}
		err = stores.Offers.AppendApplicantOffer(ctx, caller, offer.ID, s.limits.MaxOffersPerApplicant)
		if errors.Is(err, sentinel.ErrCapacityReached) {
			return models.ErrMaxOffersForApplicantReached
		}
		if err != nil {
			return wrapStore(err, "failed to index offer on applicant")
		}
		if err := stores.Offers.Insert(ctx, offer); err != nil {
			return wrapStore(err, "failed to store offer")
		}
		if err := advance(ctx, stores, models.CounterOffer, next); err != nil {
			return err
		}
		return placeHold(ctx, stores, offer)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementOfferSubmitted(offer.Price)
	}
	s.logAudit(ctx, audit.EventOfferSubmitted,
		"actor_id", caller.String(),
		"subject", "offer:"+offer.ID.String(),
		"listing_id", offer.ListingID.String(),
		"decision", string(offer.Status),
	)
	return offer, nil
}

// SignOffer marks the caller's co-signature entries as signed. A verified
// applicant who is not listed on the offer gets a successful no-op.
func (s *Service) SignOffer(ctx context.Context, caller domain.AccountID, id domain.OfferID) (*models.Offer, error) {
	var (
		offer  *models.Offer
		listed bool
	)
	err := s.command(ctx, "sign_offer", func(ctx context.Context, now domain.Tick, stores Stores) error {
		if err := requireApplicant(ctx, stores, caller); err != nil {
			return err
		}
		var err error
		offer, err = findOffer(ctx, stores, id)
		if err != nil {
			return err
		}
		if err := offer.CanSign(now); err != nil {
			return err
		}
		listed = offer.ApplySignature(caller)
		if !listed {
			return nil
		}
		if err := stores.Offers.Update(ctx, offer); err != nil {
			return wrapStore(err, "failed to store offer")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	decision := "signed"
	if !listed {
		decision = "not_listed"
	}
	s.logAudit(ctx, audit.EventOfferSigned,
		"actor_id", caller.String(),
		"subject", "offer:"+offer.ID.String(),
		"decision", decision,
	)
	return offer, nil
}

// AcceptOffer turns a fully signed pending offer into a tenancy. The hold
// is released and the price moves from the lead tenant to the landlord
// without letting the tenant's account fall below the existential deposit.
//
// Accepting one offer leaves other pending offers on the listing, and
// their holds, untouched.
func (s *Service) AcceptOffer(ctx context.Context, caller domain.AccountID, id domain.OfferID) (*AcceptResult, error) {
	var result AcceptResult
	err := s.command(ctx, "accept_offer", func(ctx context.Context, now domain.Tick, stores Stores) error {
		offer, err := findOffer(ctx, stores, id)
		if err != nil {
			return err
		}
		if err := offer.CanAccept(now); err != nil {
			return err
		}
		property, err := findProperty(ctx, stores, offer.PropertyID)
		if err != nil {
			return err
		}
		if !property.IsOwnedBy(caller) {
			return models.ErrUnauthorized
		}
		_, err = stores.Tenancies.FindByProperty(ctx, property.ID)
		if err == nil {
			return models.ErrTenancyAlreadyExists
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return wrapStore(err, "failed to load tenancy")
		}

		offer.ApplyAcceptance()
		if err := stores.Offers.Update(ctx, offer); err != nil {
			return wrapStore(err, "failed to store offer")
		}
		if err := settle(ctx, stores, offer, property.Landlord); err != nil {
			return err
		}
		tenancy := models.NewTenancyFromOffer(offer)
		err = stores.Tenancies.Insert(ctx, tenancy)
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return models.ErrTenancyAlreadyExists
		}
		if err != nil {
			return wrapStore(err, "failed to store tenancy")
		}
		result = AcceptResult{Offer: offer, Tenancy: tenancy}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementOfferAccepted(result.Offer.Price)
	}
	s.logAudit(ctx, audit.EventOfferAccepted,
		"actor_id", caller.String(),
		"subject", "offer:"+result.Offer.ID.String(),
		"property_id", result.Tenancy.PropertyID.String(),
		"decision", string(result.Offer.Status),
	)
	return &result, nil
}

func (s *Service) GetOffer(ctx context.Context, id domain.OfferID) (*models.Offer, error) {
	var offer *models.Offer
	err := s.view(ctx, func(ctx context.Context, stores Stores) error {
		var err error
		offer, err = findOffer(ctx, stores, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// ListApplicantOffers returns the offers account submitted, oldest first.
func (s *Service) ListApplicantOffers(ctx context.Context, account domain.AccountID) ([]*models.Offer, error) {
	var offers []*models.Offer
	err := s.view(ctx, func(ctx context.Context, stores Stores) error {
		ids, err := stores.Offers.ListByApplicant(ctx, account)
		if err != nil {
			return wrapStore(err, "failed to load applicant offers")
		}
		offers, err = loadOffers(ctx, stores, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// placeHold reserves the offer price. A zero-priced offer holds nothing.
func placeHold(ctx context.Context, stores Stores, offer *models.Offer) error {
	if offer.Price == 0 {
		return nil
	}
	err := stores.Ledger.PlaceHold(ctx, offer.HoldReason(), offer.LeadTenant, offer.Price)
	if errors.Is(err, ledger.ErrInsufficientBalance) || errors.Is(err, ledger.ErrBelowMinimum) {
		return models.ErrInsufficientFundsForOffer
	}
	if err != nil {
		return wrapStore(err, "failed to hold offer funds")
	}
	return nil
}

// settle releases the offer's hold and pays the landlord.
func settle(ctx context.Context, stores Stores, offer *models.Offer, landlord domain.AccountID) error {
	if offer.Price == 0 {
		return nil
	}
	if _, err := stores.Ledger.ReleaseHold(ctx, offer.HoldReason(), offer.LeadTenant); err != nil {
		return wrapStore(err, "failed to release offer funds")
	}
	err := stores.Ledger.Transfer(ctx, offer.LeadTenant, landlord, offer.Price, ledger.Preserve)
	if errors.Is(err, ledger.ErrInsufficientBalance) || errors.Is(err, ledger.ErrBelowMinimum) {
		return models.ErrInsufficientFundsForOffer
	}
	if err != nil {
		return wrapStore(err, "failed to transfer offer funds")
	}
	return nil
}

func findOffer(ctx context.Context, stores Stores, id domain.OfferID) (*models.Offer, error) {
	offer, err := stores.Offers.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, models.ErrOfferDoesNotExist
	}
	if err != nil {
		return nil, wrapStore(err, "failed to load offer")
	}
	return offer, nil
}

func loadOffers(ctx context.Context, stores Stores, ids []domain.OfferID) ([]*models.Offer, error) {
	offers := make([]*models.Offer, 0, len(ids))
	for _, id := range ids {
		offer, err := findOffer(ctx, stores, id)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, nil
}
