package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rentflow/internal/marketplace/models"
	pg "rentflow/internal/platform/postgres"
	"rentflow/pkg/domain"
	"rentflow/pkg/platform/sentinel"
)

type identities struct {
	pool *pgxpool.Pool
}

func (i *identities) AddApplicant(ctx context.Context, account domain.AccountID) error {
	return i.add(ctx, "verified_applicants", account)
}

func (i *identities) IsApplicant(ctx context.Context, account domain.AccountID) (bool, error) {
	return i.exists(ctx, "verified_applicants", account)
}

func (i *identities) AddLandlord(ctx context.Context, account domain.AccountID) error {
	return i.add(ctx, "verified_landlords", account)
}

func (i *identities) IsLandlord(ctx context.Context, account domain.AccountID) (bool, error) {
	return i.exists(ctx, "verified_landlords", account)
}

func (i *identities) add(ctx context.Context, table string, account domain.AccountID) error {
	_, err := pg.Conn(ctx, i.pool).Exec(ctx,
		"INSERT INTO "+table+" (account_id) VALUES ($1) ON CONFLICT DO NOTHING", uuid.UUID(account))
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (i *identities) exists(ctx context.Context, table string, account domain.AccountID) (bool, error) {
	var ok bool
	err := pg.Conn(ctx, i.pool).QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+table+" WHERE account_id = $1)", uuid.UUID(account)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", table, err)
	}
	return ok, nil
}

type counters struct {
	pool *pgxpool.Pool
}

func (c *counters) Current(ctx context.Context, kind models.CounterKind) (uint64, error) {
	var value int64
	err := pg.Conn(ctx, c.pool).QueryRow(ctx,
		`SELECT value FROM counters WHERE kind = $1`, string(kind)).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter %s: %w", kind, err)
	}
	return uint64(value), nil
}

func (c *counters) Advance(ctx context.Context, kind models.CounterKind, value uint64) error {
	v, err := toDB(value)
	if err != nil {
		return err
	}
	_, err = pg.Conn(ctx, c.pool).Exec(ctx, `
		INSERT INTO counters (kind, value) VALUES ($1, $2)
		ON CONFLICT (kind) DO UPDATE SET value = EXCLUDED.value`, string(kind), v)
	if err != nil {
		return fmt.Errorf("advance counter %s: %w", kind, err)
	}
	return nil
}

// Ceiling is the largest BIGINT id.
func (c *counters) Ceiling() uint64 { return math.MaxInt64 }

type properties struct {
	pool *pgxpool.Pool
}

func (p *properties) Insert(ctx context.Context, property *models.Property) error {
	id, err := toDB(property.ID)
	if err != nil {
		return err
	}
	_, err = pg.Conn(ctx, p.pool).Exec(ctx, `
		INSERT INTO properties (id, landlord_id, address_hash, postal_code_hash)
		VALUES ($1, $2, $3, $4)`,
		id, uuid.UUID(property.Landlord), property.AddressHash[:], property.PostalCodeHash[:])
	if pg.IsUniqueViolation(err) {
		return sentinel.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

func (p *properties) FindByID(ctx context.Context, id domain.PropertyID) (*models.Property, error) {
	key, err := toDB(id)
	if err != nil {
		return nil, sentinel.ErrNotFound
	}
	var (
		landlord            uuid.UUID
		address, postalCode []byte
	)
	err = pg.Conn(ctx, p.pool).QueryRow(ctx, `
		SELECT landlord_id, address_hash, postal_code_hash FROM properties WHERE id = $1`, key).
		Scan(&landlord, &address, &postalCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find property: %w", err)
	}
	property := &models.Property{ID: id, Landlord: domain.AccountID(landlord)}
	if copy(property.AddressHash[:], address) != len(property.AddressHash) ||
		copy(property.PostalCodeHash[:], postalCode) != len(property.PostalCodeHash) {
		return nil, fmt.Errorf("property %d: malformed hash column", id)
	}
	return property, nil
}

type listings struct {
	pool *pgxpool.Pool
}

func (l *listings) Insert(ctx context.Context, listing *models.Listing) error {
	v, err := toDBAll(uint64(listing.ID), uint64(listing.PropertyID), uint64(listing.Price), uint64(listing.AvailableFrom))
	if err != nil {
		return err
	}
	_, err = pg.Conn(ctx, l.pool).Exec(ctx, `
		INSERT INTO listings (id, property_id, rental_price, availability_date, lister_id)
		VALUES ($1, $2, $3, $4, $5)`,
		v[0], v[1], v[2], v[3], uuid.UUID(listing.Lister))
	if pg.IsUniqueViolation(err) {
		return sentinel.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (l *listings) FindByID(ctx context.Context, id domain.ListingID) (*models.Listing, error) {
	key, err := toDB(id)
	if err != nil {
		return nil, sentinel.ErrNotFound
	}
	var (
		propertyID, price, availableFrom int64
		lister                           uuid.UUID
	)
	err = pg.Conn(ctx, l.pool).QueryRow(ctx, `
		SELECT property_id, rental_price, availability_date, lister_id FROM listings WHERE id = $1`, key).
		Scan(&propertyID, &price, &availableFrom, &lister)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return &models.Listing{
		ID:            id,
		PropertyID:    domain.PropertyID(propertyID),
		Price:         domain.Amount(price),
		AvailableFrom: domain.Tick(availableFrom),
		Lister:        domain.AccountID(lister),
	}, nil
}

func (l *listings) AppendOffer(ctx context.Context, listing domain.ListingID, offer domain.OfferID, max int) error {
	v, err := toDBAll(uint64(listing), uint64(offer))
	if err != nil {
		return err
	}
	return appendBounded(ctx, pg.Conn(ctx, l.pool), "listing_offers", "listing_id", v[0], v[1], max)
}

func (l *listings) OfferIDs(ctx context.Context, listing domain.ListingID) ([]domain.OfferID, error) {
	key, err := toDB(listing)
	if err != nil {
		return nil, nil
	}
	return listBounded(ctx, pg.Conn(ctx, l.pool), "listing_offers", "listing_id", key)
}

type offers struct {
	pool *pgxpool.Pool
}

func (o *offers) Insert(ctx context.Context, offer *models.Offer) error {
	v, err := toDBAll(uint64(offer.ID), uint64(offer.ListingID), uint64(offer.PropertyID),
		uint64(offer.Price), uint64(offer.StartDate), uint64(offer.EndDate), uint64(offer.ValidUntil))
	if err != nil {
		return err
	}
	tenants, err := json.Marshal(offer.TenantIDs)
	if err != nil {
		return fmt.Errorf("encode tenant ids: %w", err)
	}
	sigs, err := json.Marshal(offer.CoSignatures)
	if err != nil {
		return fmt.Errorf("encode co-signatures: %w", err)
	}
	_, err = pg.Conn(ctx, o.pool).Exec(ctx, `
		INSERT INTO offers (id, listing_id, property_id, offer_price, start_date, end_date,
			lead_tenant, tenant_ids, co_signatures, all_signed, valid_until, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		v[0], v[1], v[2], v[3], v[4], v[5],
		uuid.UUID(offer.LeadTenant), tenants, sigs, offer.AllSigned, v[6], string(offer.Status))
	if pg.IsUniqueViolation(err) {
		return sentinel.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

// Update writes the mutable offer columns.
func (o *offers) Update(ctx context.Context, offer *models.Offer) error {
	id, err := toDB(offer.ID)
	if err != nil {
		return err
	}
	sigs, err := json.Marshal(offer.CoSignatures)
	if err != nil {
		return fmt.Errorf("encode co-signatures: %w", err)
	}
	tag, err := pg.Conn(ctx, o.pool).Exec(ctx, `
		UPDATE offers SET co_signatures = $2, all_signed = $3, status = $4 WHERE id = $1`,
		id, sigs, offer.AllSigned, string(offer.Status))
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (o *offers) FindByID(ctx context.Context, id domain.OfferID) (*models.Offer, error) {
	key, err := toDB(id)
	if err != nil {
		return nil, sentinel.ErrNotFound
	}
	var (
		listingID, propertyID, price, start, end, validUntil int64
		lead                                                 uuid.UUID
		tenants, sigs                                        []byte
		allSigned                                            bool
		status                                               string
	)
	err = pg.Conn(ctx, o.pool).QueryRow(ctx, `
		SELECT listing_id, property_id, offer_price, start_date, end_date, lead_tenant,
			tenant_ids, co_signatures, all_signed, valid_until, status
		FROM offers WHERE id = $1`, key).
		Scan(&listingID, &propertyID, &price, &start, &end, &lead, &tenants, &sigs, &allSigned, &validUntil, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find offer: %w", err)
	}
	offer := &models.Offer{
		ID:         id,
		ListingID:  domain.ListingID(listingID),
		PropertyID: domain.PropertyID(propertyID),
		Price:      domain.Amount(price),
		StartDate:  domain.Tick(start),
		EndDate:    domain.Tick(end),
		LeadTenant: domain.AccountID(lead),
		AllSigned:  allSigned,
		ValidUntil: domain.Tick(validUntil),
		Status:     models.OfferStatus(status),
	}
	if err := json.Unmarshal(tenants, &offer.TenantIDs); err != nil {
		return nil, fmt.Errorf("decode tenant ids: %w", err)
	}
	if err := json.Unmarshal(sigs, &offer.CoSignatures); err != nil {
		return nil, fmt.Errorf("decode co-signatures: %w", err)
	}
	return offer, nil
}

func (o *offers) AppendApplicantOffer(ctx context.Context, account domain.AccountID, offer domain.OfferID, max int) error {
	id, err := toDB(offer)
	if err != nil {
		return err
	}
	return appendBounded(ctx, pg.Conn(ctx, o.pool), "applicant_offers", "account_id", uuid.UUID(account), id, max)
}

func (o *offers) ListByApplicant(ctx context.Context, account domain.AccountID) ([]domain.OfferID, error) {
	return listBounded(ctx, pg.Conn(ctx, o.pool), "applicant_offers", "account_id", uuid.UUID(account))
}

// appendBounded adds offer at the end of owner's list in table unless the
// list already holds max entries. Callers hold the command lock.
func appendBounded(ctx context.Context, conn pg.DBTX, table, ownerColumn string, owner any, offer int64, max int) error {
	var n int
	err := conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+table+" WHERE "+ownerColumn+" = $1", owner).Scan(&n)
	if err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if n >= max {
		return sentinel.ErrCapacityReached
	}
	_, err = conn.Exec(ctx,
		"INSERT INTO "+table+" ("+ownerColumn+", position, offer_id) VALUES ($1, $2, $3)", owner, n, offer)
	if err != nil {
		return fmt.Errorf("append %s: %w", table, err)
	}
	return nil
}

func listBounded(ctx context.Context, conn pg.DBTX, table, ownerColumn string, owner any) ([]domain.OfferID, error) {
	rows, err := conn.Query(ctx,
		"SELECT offer_id FROM "+table+" WHERE "+ownerColumn+" = $1 ORDER BY position", owner)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OfferID, error) {
		var id int64
		err := row.Scan(&id)
		return domain.OfferID(id), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return ids, nil
}

type tenancies struct {
	pool *pgxpool.Pool
}

func (t *tenancies) Insert(ctx context.Context, tenancy *models.Tenancy) error {
	v, err := toDBAll(uint64(tenancy.PropertyID), uint64(tenancy.Price), uint64(tenancy.StartDate), uint64(tenancy.EndDate))
	if err != nil {
		return err
	}
	tenants, err := json.Marshal(tenancy.TenantIDs)
	if err != nil {
		return fmt.Errorf("encode tenant ids: %w", err)
	}
	_, err = pg.Conn(ctx, t.pool).Exec(ctx, `
		INSERT INTO tenancies (property_id, rental_price, start_date, end_date, tenant_ids)
		VALUES ($1, $2, $3, $4, $5)`, v[0], v[1], v[2], v[3], tenants)
	if pg.IsUniqueViolation(err) {
		return sentinel.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert tenancy: %w", err)
	}
	return nil
}

func (t *tenancies) FindByProperty(ctx context.Context, property domain.PropertyID) (*models.Tenancy, error) {
	key, err := toDB(property)
	if err != nil {
		return nil, sentinel.ErrNotFound
	}
	var (
		price, start, end int64
		tenants           []byte
	)
	err = pg.Conn(ctx, t.pool).QueryRow(ctx, `
		SELECT rental_price, start_date, end_date, tenant_ids FROM tenancies WHERE property_id = $1`, key).
		Scan(&price, &start, &end, &tenants)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find tenancy: %w", err)
	}
	tenancy := &models.Tenancy{
		PropertyID: property,
		Price:      domain.Amount(price),
		StartDate:  domain.Tick(start),
		EndDate:    domain.Tick(end),
	}
	if err := json.Unmarshal(tenants, &tenancy.TenantIDs); err != nil {
		return nil, fmt.Errorf("decode tenant ids: %w", err)
	}
	return tenancy, nil
}
