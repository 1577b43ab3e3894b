package handler

import (
	"strings"

	"rentflow/pkg/domain"
	dErrors "rentflow/pkg/domain-errors"
)

const (
	maxAddressLength = 256
	maxTenantIDs     = 100
)

// AccountRequest is the body of POST /admin/applicants and /admin/landlords.
type AccountRequest struct {
	AccountID string `json:"account_id"`

	parsedAccount domain.AccountID
}

func (r *AccountRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	account, err := domain.ParseAccountID(strings.TrimSpace(r.AccountID))
	if err != nil {
		return err
	}
	r.parsedAccount = account
	return nil
}

// RegisterPropertyRequest carries the plain address; only its hash is kept.
type RegisterPropertyRequest struct {
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	LandlordID string `json:"landlord_id"`

	parsedLandlord domain.AccountID
}

func (r *RegisterPropertyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Address) > maxAddressLength || len(r.PostalCode) > maxAddressLength {
		return dErrors.New(dErrors.CodeValidation, "address fields are too long")
	}
	r.Address = strings.TrimSpace(r.Address)
	r.PostalCode = strings.TrimSpace(r.PostalCode)
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	if r.PostalCode == "" {
		return dErrors.New(dErrors.CodeValidation, "postal_code is required")
	}
	landlord, err := domain.ParseAccountID(strings.TrimSpace(r.LandlordID))
	if err != nil {
		return err
	}
	r.parsedLandlord = landlord
	return nil
}

type DepositRequest struct {
	AccountID string `json:"account_id"`
	Amount    uint64 `json:"amount"`

	parsedAccount domain.AccountID
}

func (r *DepositRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	account, err := domain.ParseAccountID(strings.TrimSpace(r.AccountID))
	if err != nil {
		return err
	}
	if r.Amount == 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	r.parsedAccount = account
	return nil
}

type AdvanceClockRequest struct {
	Ticks uint64 `json:"ticks"`
}

func (r *AdvanceClockRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Ticks == 0 {
		return dErrors.New(dErrors.CodeValidation, "ticks must be positive")
	}
	return nil
}

type CreateListingRequest struct {
	PropertyID       uint64 `json:"property_id"`
	RentalPrice      uint64 `json:"rental_price"`
	AvailabilityDate uint64 `json:"availability_date"`
}

func (r *CreateListingRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// SubmitOfferRequest is the body of POST /offers. Date checks against the
// clock happen in the service; only shape is checked here.
type SubmitOfferRequest struct {
	ListingID  uint64   `json:"listing_id"`
	OfferPrice uint64   `json:"offer_price"`
	StartDate  uint64   `json:"start_date"`
	EndDate    uint64   `json:"end_date"`
	TenantIDs  []string `json:"tenant_ids"`
	ValidUntil uint64   `json:"valid_until"`

	parsedTenants []domain.AccountID
}

func (r *SubmitOfferRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.TenantIDs) > maxTenantIDs {
		return dErrors.New(dErrors.CodeValidation, "too many tenant_ids")
	}
	tenants := make([]domain.AccountID, 0, len(r.TenantIDs))
	for _, raw := range r.TenantIDs {
		tenant, err := domain.ParseAccountID(strings.TrimSpace(raw))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid tenant id")
		}
		tenants = append(tenants, tenant)
	}
	r.parsedTenants = tenants
	return nil
}
