package models

import (
	dErrors "rentflow/pkg/domain-errors"
)

// Limits bounds the per-entity collections.
type Limits struct {
	MaxTenantsPerOffer    int
	MaxOffersPerListing   int
	MaxOffersPerApplicant int
}

func DefaultLimits() Limits {
	return Limits{
		MaxTenantsPerOffer:    10,
		MaxOffersPerListing:   20,
		MaxOffersPerApplicant: 20,
	}
}

func (l Limits) Validate() error {
	if l.MaxTenantsPerOffer < 1 || l.MaxOffersPerListing < 1 || l.MaxOffersPerApplicant < 1 {
		return dErrors.New(dErrors.CodeInvariantViolation, "marketplace limits must be positive")
	}
	return nil
}
