package service

import (
	"context"
	"errors"

	"rentflow/internal/marketplace/models"
	"rentflow/pkg/domain"
	audit "rentflow/pkg/platform/audit"
	"rentflow/pkg/platform/sentinel"
)

type CreateListingCommand struct {
	PropertyID    domain.PropertyID
	Price         domain.Amount
	AvailableFrom domain.Tick
}

// CreateListing lists a property. Only the property's landlord may list it.
func (s *Service) CreateListing(ctx context.Context, caller domain.AccountID, cmd CreateListingCommand) (*models.Listing, error) {
	var listing *models.Listing
	err := s.command(ctx, "create_listing", func(ctx context.Context, _ domain.Tick, stores Stores) error {
		property, err := findProperty(ctx, stores, cmd.PropertyID)
		if err != nil {
			return err
		}
		if !property.IsOwnedBy(caller) {
			return models.ErrUnauthorized
		}
		next, err := allocate(ctx, stores, models.CounterListing, models.ErrTooManyListings)
		if err != nil {
			return err
		}

		listing, err = models.NewListing(domain.ListingID(next), property, caller, cmd.Price, cmd.AvailableFrom)
		if err != nil {
			return err
		}
		if err := stores.Listings.Insert(ctx, listing); err != nil {
			return wrapStore(err, "failed to store listing")
		}
		return advance(ctx, stores, models.CounterListing, next)
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventListingCreated,
		"actor_id", caller.String(),
		"subject", "listing:"+listing.ID.String(),
		"property_id", listing.PropertyID.String(),
	)
	return listing, nil
}

func (s *Service) GetListing(ctx context.Context, id domain.ListingID) (*models.Listing, error) {
	var listing *models.Listing
	err := s.view(ctx, func(ctx context.Context, stores Stores) error {
		var err error
		listing, err = findListing(ctx, stores, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// ListListingOffers returns the listing's offers in submission order.
func (s *Service) ListListingOffers(ctx context.Context, id domain.ListingID) ([]*models.Offer, error) {
	var offers []*models.Offer
	err := s.view(ctx, func(ctx context.Context, stores Stores) error {
		if _, err := findListing(ctx, stores, id); err != nil {
			return err
		}
		ids, err := stores.Listings.OfferIDs(ctx, id)
		if err != nil {
			return wrapStore(err, "failed to load listing offers")
		}
		offers, err = loadOffers(ctx, stores, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func findListing(ctx context.Context, stores Stores, id domain.ListingID) (*models.Listing, error) {
	listing, err := stores.Listings.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, models.ErrListingDoesNotExist
	}
	if err != nil {
		return nil, wrapStore(err, "failed to load listing")
	}
	return listing, nil
}
