package service

import (
	"context"

	"rentflow/internal/ledger"
	"rentflow/internal/marketplace/models"
	"rentflow/pkg/domain"
	audit "rentflow/pkg/platform/audit"
)

// IdentityStore holds the verified applicant and landlord sets.
// Adds are idempotent.
type IdentityStore interface {
	AddApplicant(ctx context.Context, account domain.AccountID) error
	IsApplicant(ctx context.Context, account domain.AccountID) (bool, error)
	AddLandlord(ctx context.Context, account domain.AccountID) error
	IsLandlord(ctx context.Context, account domain.AccountID) (bool, error)
}

// CounterStore holds the id counters. Ceiling is the largest id the
// backend can represent.
type CounterStore interface {
	Current(ctx context.Context, kind models.CounterKind) (uint64, error)
	Advance(ctx context.Context, kind models.CounterKind, value uint64) error
	Ceiling() uint64
}

type PropertyStore interface {
	Insert(ctx context.Context, property *models.Property) error
	FindByID(ctx context.Context, id domain.PropertyID) (*models.Property, error)
}

// ListingStore returns sentinel.ErrCapacityReached when a listing's offer
// list already holds max entries.
type ListingStore interface {
	Insert(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id domain.ListingID) (*models.Listing, error)
	AppendOffer(ctx context.Context, listing domain.ListingID, offer domain.OfferID, max int) error
	OfferIDs(ctx context.Context, listing domain.ListingID) ([]domain.OfferID, error)
}

type OfferStore interface {
	Insert(ctx context.Context, offer *models.Offer) error
	Update(ctx context.Context, offer *models.Offer) error
	FindByID(ctx context.Context, id domain.OfferID) (*models.Offer, error)
	AppendApplicantOffer(ctx context.Context, account domain.AccountID, offer domain.OfferID, max int) error
	ListByApplicant(ctx context.Context, account domain.AccountID) ([]domain.OfferID, error)
}

// TenancyStore returns sentinel.ErrAlreadyExists on a second insert for
// the same property.
type TenancyStore interface {
	Insert(ctx context.Context, tenancy *models.Tenancy) error
	FindByProperty(ctx context.Context, property domain.PropertyID) (*models.Tenancy, error)
}

// Stores is the view of state one command works against.
type Stores struct {
	Identities IdentityStore
	Counters   CounterStore
	Properties PropertyStore
	Listings   ListingStore
	Offers     OfferStore
	Tenancies  TenancyStore
	Ledger     ledger.Escrow
}

// Tx is the atomic boundary. Every write fn makes, ledger calls included,
// takes effect only if fn returns nil. View runs read-only work against
// committed state.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
	View(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

// Funds is the host-side ledger surface used outside marketplace commands.
type Funds interface {
	Deposit(ctx context.Context, account domain.AccountID, amount domain.Amount) error
	Account(ctx context.Context, account domain.AccountID) (ledger.Account, error)
}

type Clock interface {
	Now(ctx context.Context) domain.Tick
}

// ClockControl advances a manually driven clock.
type ClockControl interface {
	Advance(ticks uint64) (domain.Tick, error)
}

type Authority interface {
	IsPrivileged(ctx context.Context, account domain.AccountID) bool
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
