package models

import (
	"slices"

	"rentflow/pkg/domain"
)

// Tenancy is a finalized lease. At most one exists per property and it is
// only ever written by offer acceptance.
type Tenancy struct {
	PropertyID domain.PropertyID  `json:"property_id"`
	Price      domain.Amount      `json:"rental_price"`
	StartDate  domain.Tick        `json:"start_date"`
	EndDate    domain.Tick        `json:"end_date"`
	TenantIDs  []domain.AccountID `json:"tenant_ids"`
}

// NewTenancyFromOffer copies the lease terms of an accepted offer.
func NewTenancyFromOffer(o *Offer) *Tenancy {
	return &Tenancy{
		PropertyID: o.PropertyID,
		Price:      o.Price,
		StartDate:  o.StartDate,
		EndDate:    o.EndDate,
		TenantIDs:  slices.Clone(o.TenantIDs),
	}
}
