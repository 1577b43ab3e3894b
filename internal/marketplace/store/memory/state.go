package memory

import (
	"context"
	"slices"

	"rentflow/internal/marketplace/models"
	"rentflow/pkg/domain"
	"rentflow/pkg/platform/sentinel"
)

// state holds the committed marketplace maps. Stored entities are never
// mutated in place: stores copy on the way in and on the way out, and a
// write replaces the map entry.
type state struct {
	applicants      map[domain.AccountID]struct{}
	landlords       map[domain.AccountID]struct{}
	counters        map[models.CounterKind]uint64
	properties      map[domain.PropertyID]*models.Property
	listings        map[domain.ListingID]*models.Listing
	listingOffers   map[domain.ListingID][]domain.OfferID
	offers          map[domain.OfferID]*models.Offer
	applicantOffers map[domain.AccountID][]domain.OfferID
	tenancies       map[domain.PropertyID]*models.Tenancy
}

func newState() *state {
	return &state{
		applicants:      make(map[domain.AccountID]struct{}),
		landlords:       make(map[domain.AccountID]struct{}),
		counters:        make(map[models.CounterKind]uint64),
		properties:      make(map[domain.PropertyID]*models.Property),
		listings:        make(map[domain.ListingID]*models.Listing),
		listingOffers:   make(map[domain.ListingID][]domain.OfferID),
		offers:          make(map[domain.OfferID]*models.Offer),
		applicantOffers: make(map[domain.AccountID][]domain.OfferID),
		tenancies:       make(map[domain.PropertyID]*models.Tenancy),
	}
}

// undoLog records the prior value of every map entry a command writes, so
// a failed command can restore exactly what it touched. One log belongs to
// one command. A nil log records nothing.
type undoLog struct {
	steps []func()
}

// Len reports the number of recorded writes.
func (u *undoLog) Len() int {
	if u == nil {
		return 0
	}
	return len(u.steps)
}

// Rollback restores recorded entries newest first and clears the log.
func (u *undoLog) Rollback() {
	if u == nil {
		return
	}
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
	u.steps = nil
}

// Commit forgets the recorded entries.
func (u *undoLog) Commit() {
	if u != nil {
		u.steps = nil
	}
}

// put sets m[key] and records how to put back the previous entry.
func put[K comparable, V any](u *undoLog, m map[K]V, key K, value V) {
	if u != nil {
		prev, had := m[key]
		u.steps = append(u.steps, func() {
			if had {
				m[key] = prev
			} else {
				delete(m, key)
			}
		})
	}
	m[key] = value
}

type identities struct {
	st  *state
	log *undoLog
}

func (i identities) AddApplicant(_ context.Context, account domain.AccountID) error {
	put(i.log, i.st.applicants, account, struct{}{})
	return nil
}

func (i identities) IsApplicant(_ context.Context, account domain.AccountID) (bool, error) {
	_, ok := i.st.applicants[account]
	return ok, nil
}

func (i identities) AddLandlord(_ context.Context, account domain.AccountID) error {
	put(i.log, i.st.landlords, account, struct{}{})
	return nil
}

func (i identities) IsLandlord(_ context.Context, account domain.AccountID) (bool, error) {
	_, ok := i.st.landlords[account]
	return ok, nil
}

type counters struct {
	st  *state
	log *undoLog
}

func (c counters) Current(_ context.Context, kind models.CounterKind) (uint64, error) {
	return c.st.counters[kind], nil
}

func (c counters) Advance(_ context.Context, kind models.CounterKind, value uint64) error {
	put(c.log, c.st.counters, kind, value)
	return nil
}

func (c counters) Ceiling() uint64 { return ^uint64(0) }

type properties struct {
	st  *state
	log *undoLog
}

func (p properties) Insert(_ context.Context, property *models.Property) error {
	if _, ok := p.st.properties[property.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	cp := *property
	put(p.log, p.st.properties, property.ID, &cp)
	return nil
}

func (p properties) FindByID(_ context.Context, id domain.PropertyID) (*models.Property, error) {
	property, ok := p.st.properties[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *property
	return &cp, nil
}

type listings struct {
	st  *state
	log *undoLog
}

func (l listings) Insert(_ context.Context, listing *models.Listing) error {
	if _, ok := l.st.listings[listing.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	cp := *listing
	put(l.log, l.st.listings, listing.ID, &cp)
	return nil
}

func (l listings) FindByID(_ context.Context, id domain.ListingID) (*models.Listing, error) {
	listing, ok := l.st.listings[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *listing
	return &cp, nil
}

func (l listings) AppendOffer(_ context.Context, listing domain.ListingID, offer domain.OfferID, max int) error {
	ids := l.st.listingOffers[listing]
	if len(ids) >= max {
		return sentinel.ErrCapacityReached
	}
	put(l.log, l.st.listingOffers, listing, append(slices.Clip(ids), offer))
	return nil
}

func (l listings) OfferIDs(_ context.Context, listing domain.ListingID) ([]domain.OfferID, error) {
	return slices.Clone(l.st.listingOffers[listing]), nil
}

type offers struct {
	st  *state
	log *undoLog
}

func (o offers) Insert(_ context.Context, offer *models.Offer) error {
	if _, ok := o.st.offers[offer.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	put(o.log, o.st.offers, offer.ID, offer.Clone())
	return nil
}

func (o offers) Update(_ context.Context, offer *models.Offer) error {
	if _, ok := o.st.offers[offer.ID]; !ok {
		return sentinel.ErrNotFound
	}
	put(o.log, o.st.offers, offer.ID, offer.Clone())
	return nil
}

func (o offers) FindByID(_ context.Context, id domain.OfferID) (*models.Offer, error) {
	offer, ok := o.st.offers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return offer.Clone(), nil
}

func (o offers) AppendApplicantOffer(_ context.Context, account domain.AccountID, offer domain.OfferID, max int) error {
	ids := o.st.applicantOffers[account]
	if len(ids) >= max {
		return sentinel.ErrCapacityReached
	}
	put(o.log, o.st.applicantOffers, account, append(slices.Clip(ids), offer))
	return nil
}

func (o offers) ListByApplicant(_ context.Context, account domain.AccountID) ([]domain.OfferID, error) {
	return slices.Clone(o.st.applicantOffers[account]), nil
}

type tenancies struct {
	st  *state
	log *undoLog
}

func (t tenancies) Insert(_ context.Context, tenancy *models.Tenancy) error {
	if _, ok := t.st.tenancies[tenancy.PropertyID]; ok {
		return sentinel.ErrAlreadyExists
	}
	cp := *tenancy
	cp.TenantIDs = slices.Clone(tenancy.TenantIDs)
	put(t.log, t.st.tenancies, tenancy.PropertyID, &cp)
	return nil
}

func (t tenancies) FindByProperty(_ context.Context, property domain.PropertyID) (*models.Tenancy, error) {
	tenancy, ok := t.st.tenancies[property]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *tenancy
	cp.TenantIDs = slices.Clone(tenancy.TenantIDs)
	return &cp, nil
}
