package models

import (
	"rentflow/pkg/domain"
)

// Listing offers a property for rent from AvailableFrom onwards.
//
// Invariants:
//   - PropertyID references an existing property
//   - Lister is that property's landlord
type Listing struct {
	ID            domain.ListingID  `json:"id"`
	PropertyID    domain.PropertyID `json:"property_id"`
	Price         domain.Amount     `json:"rental_price"`
	AvailableFrom domain.Tick       `json:"availability_date"`
	Lister        domain.AccountID  `json:"lister_id"`
}

// NewListing checks ownership before building the listing.
func NewListing(id domain.ListingID, property *Property, lister domain.AccountID, price domain.Amount, availableFrom domain.Tick) (*Listing, error) {
	if !property.IsOwnedBy(lister) {
		return nil, ErrUnauthorized
	}
	return &Listing{
		ID:            id,
		PropertyID:    property.ID,
		Price:         price,
		AvailableFrom: availableFrom,
		Lister:        lister,
	}, nil
}
