package models

import (
	dErrors "rentflow/pkg/domain-errors"
)

// Error kinds returned by marketplace commands. Each is a shared value so
// callers match with errors.Is; the code carries the category to transports.
var (
	// Capacity
	ErrTooManyProperties            = dErrors.New(dErrors.CodeCapacityExceeded, "too many properties")
	ErrTooManyListings              = dErrors.New(dErrors.CodeCapacityExceeded, "too many listings")
	ErrTooManyOffers                = dErrors.New(dErrors.CodeCapacityExceeded, "too many offers")
	ErrTooManyOffersOnListing       = dErrors.New(dErrors.CodeCapacityExceeded, "too many offers on listing")
	ErrMaxOffersForApplicantReached = dErrors.New(dErrors.CodeCapacityExceeded, "max offers for applicant reached")
	ErrTooManyTenants               = dErrors.New(dErrors.CodeCapacityExceeded, "too many tenants")

	// Existence
	ErrPropertyDoesNotExist = dErrors.New(dErrors.CodeNotFound, "property does not exist")
	ErrListingDoesNotExist  = dErrors.New(dErrors.CodeNotFound, "listing does not exist")
	ErrOfferDoesNotExist    = dErrors.New(dErrors.CodeNotFound, "offer does not exist")
	ErrTenancyDoesNotExist  = dErrors.New(dErrors.CodeNotFound, "tenancy does not exist")

	// Authorization
	ErrUnauthorized = dErrors.New(dErrors.CodeForbidden, "unauthorized")

	// Validation
	ErrInvalidOfferStartDate       = dErrors.New(dErrors.CodeValidation, "invalid offer start date")
	ErrTenantIDsCannotBeEmpty      = dErrors.New(dErrors.CodeValidation, "tenant ids cannot be empty")
	ErrAllApplicantsMustBeVerified = dErrors.New(dErrors.CodeValidation, "all applicants must be verified")
	ErrOfferValidUntilMustBeFuture = dErrors.New(dErrors.CodeValidation, "offer valid until must be in the future")

	// Funds
	ErrInsufficientFundsForOffer = dErrors.New(dErrors.CodeInsufficientFunds, "insufficient funds for offer")

	// Workflow
	ErrOfferExpired          = dErrors.New(dErrors.CodeInvalidState, "offer expired")
	ErrOfferCannotBeAccepted = dErrors.New(dErrors.CodeInvalidState, "offer cannot be accepted")
	ErrOfferNotFullySigned   = dErrors.New(dErrors.CodeInvalidState, "offer not fully signed")
	ErrTenancyAlreadyExists  = dErrors.New(dErrors.CodeInvalidState, "tenancy already exists")
)
