package models

import (
	"slices"

	"rentflow/pkg/domain"
)

// OfferStatus is the lifecycle state of an offer.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferCancelled OfferStatus = "cancelled"
)

// CanTransitionTo reports whether the status machine allows next.
// Only pending offers move, and never back to pending.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	if s != OfferPending {
		return false
	}
	switch next {
	case OfferAccepted, OfferRejected, OfferCancelled:
		return true
	default:
		return false
	}
}

func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferPending, OfferAccepted, OfferRejected, OfferCancelled:
		return true
	default:
		return false
	}
}

// CoSignature records one prospective tenant's acknowledgment.
type CoSignature struct {
	TenantID domain.AccountID `json:"tenant_id"`
	Signed   bool             `json:"signed"`
}

// Offer is a time-bounded bid on a listing by a lead tenant on behalf of
// one or more prospective tenants.
//
// Invariants:
//   - TenantIDs is non-empty and CoSignatures has one entry per tenant, in order
//   - AllSigned is true iff every co-signature is signed
//   - Only CoSignatures, AllSigned and Status change after creation
type Offer struct {
	ID           domain.OfferID     `json:"id"`
	ListingID    domain.ListingID   `json:"listing_id"`
	PropertyID   domain.PropertyID  `json:"property_id"`
	Price        domain.Amount      `json:"offer_price"`
	StartDate    domain.Tick        `json:"start_date"`
	EndDate      domain.Tick        `json:"end_date"`
	LeadTenant   domain.AccountID   `json:"lead_tenant"`
	TenantIDs    []domain.AccountID `json:"tenant_ids"`
	CoSignatures []CoSignature      `json:"co_signatures"`
	AllSigned    bool               `json:"all_signed"`
	ValidUntil   domain.Tick        `json:"valid_until"`
	Status       OfferStatus        `json:"status"`
}

// OfferTerms are the caller-supplied parts of a new offer.
type OfferTerms struct {
	Price      domain.Amount
	StartDate  domain.Tick
	EndDate    domain.Tick
	TenantIDs  []domain.AccountID
	ValidUntil domain.Tick
}

// CheckValidUntil requires the offer window to close strictly after now.
func CheckValidUntil(now, validUntil domain.Tick) error {
	if validUntil <= now {
		return ErrOfferValidUntilMustBeFuture
	}
	return nil
}

// CheckOfferDates requires start in [max(now, availableFrom), end).
func CheckOfferDates(now, availableFrom, start, end domain.Tick) error {
	if start < now || start >= end || start < availableFrom {
		return ErrInvalidOfferStartDate
	}
	return nil
}

// NewOffer builds a pending offer. A solo tenant is their own co-signer;
// with several tenants only the lead tenant's entries start signed.
func NewOffer(id domain.OfferID, listing *Listing, lead domain.AccountID, terms OfferTerms) (*Offer, error) {
	if len(terms.TenantIDs) == 0 {
		return nil, ErrTenantIDsCannotBeEmpty
	}
	solo := len(terms.TenantIDs) == 1
	sigs := make([]CoSignature, len(terms.TenantIDs))
	for i, tenant := range terms.TenantIDs {
		sigs[i] = CoSignature{TenantID: tenant, Signed: solo || tenant == lead}
	}
	o := &Offer{
		ID:           id,
		ListingID:    listing.ID,
		PropertyID:   listing.PropertyID,
		Price:        terms.Price,
		StartDate:    terms.StartDate,
		EndDate:      terms.EndDate,
		LeadTenant:   lead,
		TenantIDs:    slices.Clone(terms.TenantIDs),
		CoSignatures: sigs,
		ValidUntil:   terms.ValidUntil,
		Status:       OfferPending,
	}
	o.recomputeAllSigned()
	return o, nil
}

// IsExpired reports whether now is past the offer window.
func (o *Offer) IsExpired(now domain.Tick) bool {
	return now > o.ValidUntil
}

// HoldReason is the ledger reason tag for this offer's fund hold.
func (o *Offer) HoldReason() string {
	return HoldReasonFor(o.ID)
}

func HoldReasonFor(id domain.OfferID) string {
	return "offer:" + id.String()
}

// CanSign checks the workflow guards for a co-signature.
func (o *Offer) CanSign(now domain.Tick) error {
	if o.IsExpired(now) {
		return ErrOfferExpired
	}
	if o.Status != OfferPending {
		return ErrOfferCannotBeAccepted
	}
	return nil
}

// ApplySignature marks every entry for tenant as signed and reports
// whether any entry matched. A non-listed tenant changes nothing.
func (o *Offer) ApplySignature(tenant domain.AccountID) bool {
	matched := false
	for i := range o.CoSignatures {
		if o.CoSignatures[i].TenantID == tenant {
			o.CoSignatures[i].Signed = true
			matched = true
		}
	}
	o.recomputeAllSigned()
	return matched
}

// CanAccept checks the offer-local acceptance guards. Property ownership
// and tenancy uniqueness are checked by the caller afterwards.
func (o *Offer) CanAccept(now domain.Tick) error {
	if o.IsExpired(now) {
		return ErrOfferExpired
	}
	if !o.Status.CanTransitionTo(OfferAccepted) {
		return ErrOfferCannotBeAccepted
	}
	if !o.AllSigned {
		return ErrOfferNotFullySigned
	}
	if o.StartDate <= now {
		return ErrInvalidOfferStartDate
	}
	return nil
}

// ApplyAcceptance moves the offer to Accepted. Call CanAccept first.
func (o *Offer) ApplyAcceptance() {
	o.Status = OfferAccepted
}

// Clone returns a deep copy.
func (o *Offer) Clone() *Offer {
	c := *o
	c.TenantIDs = slices.Clone(o.TenantIDs)
	c.CoSignatures = slices.Clone(o.CoSignatures)
	return &c
}

func (o *Offer) recomputeAllSigned() {
	all := true
	for _, s := range o.CoSignatures {
		all = all && s.Signed
	}
	o.AllSigned = all
}
